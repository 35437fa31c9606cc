package server_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/keyhash"
	"github.com/papercache/papercache/internal/server"
	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/wire"
)

var _ = Describe("Executor", func() {
	It("answers Ping with pong regardless of auth state", func() {
		token := keyhash.Sum64([]byte("secret"))
		exec := server.NewExecutor(newTestVault(&token), "v")

		payload, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindPing})
		Expect(srvErr).To(BeNil())
		Expect(payload).To(Equal(wire.EncodeBuf([]byte("pong"))))
	})

	It("answers Version with the configured version string", func() {
		exec := server.NewExecutor(newTestVault(nil), "v1.2.3")

		payload, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindVersion})
		Expect(srvErr).To(BeNil())
		Expect(payload).To(Equal(wire.EncodeBuf([]byte("v1.2.3"))))
	})

	Context("Property 5 — auth gate", func() {
		It("rejects data commands on a locked vault without touching the cache", func() {
			token := keyhash.Sum64([]byte("secret"))
			exec := server.NewExecutor(newTestVault(&token), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindGet, Key: []byte("foo")})
			Expect(srvErr).ToNot(BeNil())
			Expect(srvErr.Category()).To(Equal(srverr.CategoryUnauthorized))
		})

		It("unlocks on a correct Auth and then serves data commands normally", func() {
			token := keyhash.Sum64([]byte("secret"))
			exec := server.NewExecutor(newTestVault(&token), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindAuth, Token: []byte("secret")})
			Expect(srvErr).To(BeNil())

			_, srvErr = exec.Dispatch(&wire.Command{Kind: wire.KindGet, Key: []byte("foo")})
			Expect(srvErr).ToNot(BeNil())
			Expect(srvErr.Category()).To(Equal(srverr.CategoryCacheEngine))
			Expect(srvErr.Subcode()).To(Equal(srverr.SubcodeKeyNotFound))
		})

		It("rejects a mismatched Auth token", func() {
			token := keyhash.Sum64([]byte("secret"))
			exec := server.NewExecutor(newTestVault(&token), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindAuth, Token: []byte("wrong")})
			Expect(srvErr).ToNot(BeNil())
			Expect(srvErr.Category()).To(Equal(srverr.CategoryUnauthorized))
		})

		It("treats Auth as immediate success when no token is configured", func() {
			exec := server.NewExecutor(newTestVault(nil), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindAuth, Token: []byte("anything")})
			Expect(srvErr).To(BeNil())
		})
	})

	Context("data commands on an unlocked vault", func() {
		It("round-trips Set then Get", func() {
			exec := server.NewExecutor(newTestVault(nil), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindSet, Key: []byte("foo"), Value: []byte("bar")})
			Expect(srvErr).To(BeNil())

			payload, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindGet, Key: []byte("foo")})
			Expect(srvErr).To(BeNil())
			Expect(payload).To(Equal(wire.EncodeBuf([]byte("bar"))))
		})

		It("reports KeyNotFound for a missing key", func() {
			exec := server.NewExecutor(newTestVault(nil), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindGet, Key: []byte("missing")})
			Expect(srvErr).ToNot(BeNil())
			Expect(srvErr.Subcode()).To(Equal(srverr.SubcodeKeyNotFound))
		})

		It("rejects Resize to zero", func() {
			exec := server.NewExecutor(newTestVault(nil), "v")

			_, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindResize, ResizeBytes: 0})
			Expect(srvErr).ToNot(BeNil())
			Expect(srvErr.Subcode()).To(Equal(srverr.SubcodeZeroCacheSize))
		})

		It("encodes Stats as seven 8-byte fields plus one policy byte", func() {
			exec := server.NewExecutor(newTestVault(nil), "v")

			payload, srvErr := exec.Dispatch(&wire.Command{Kind: wire.KindStats})
			Expect(srvErr).To(BeNil())
			// max, used, gets, sets, dels, miss_ratio, uptime: 7 x u64/f64 + 1 policy byte.
			Expect(payload).To(HaveLen(8*7 + 1))
		})
	})
})
