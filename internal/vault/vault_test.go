package vault_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/allocator"
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/engine"
	"github.com/papercache/papercache/internal/keyhash"
	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/vault"
)

func newFacade() *cache.Facade {
	alloc := allocator.New(8<<20, "", 0)
	eng, err := engine.New(engine.Config{
		MaxSize:       1 << 16,
		AllowedPolicy: []cache.Policy{cache.PolicyLRU},
		InitialPolicy: cache.PolicyLRU,
		Version:       "test",
		Alloc:         alloc,
	})
	Expect(err).ToNot(HaveOccurred())
	return cache.NewFacade(eng)
}

var _ = Describe("Vault", func() {
	It("starts unlocked when no auth token is configured", func() {
		v := vault.New(newFacade(), nil)
		Expect(v.Locked()).To(BeFalse())
		Expect(v.RequiresAuth()).To(BeFalse())

		_, err := v.Cache()
		Expect(err).ToNot(HaveOccurred())
	})

	It("starts locked when an auth token is configured", func() {
		token := keyhash.Sum64([]byte("secret"))
		v := vault.New(newFacade(), &token)
		Expect(v.Locked()).To(BeTrue())

		_, err := v.Cache()
		Expect(errors.Is(err, srverr.ErrUnauthorized)).To(BeTrue())
	})

	It("unlocks on a matching token and stays unlocked (idempotent Auth)", func() {
		token := keyhash.Sum64([]byte("secret"))
		v := vault.New(newFacade(), &token)

		Expect(v.TryUnlock(token)).To(Succeed())
		Expect(v.Locked()).To(BeFalse())

		// Re-auth after already unlocked is a no-op success regardless of
		// the token presented.
		Expect(v.TryUnlock(keyhash.Sum64([]byte("anything")))).To(Succeed())
		Expect(v.Locked()).To(BeFalse())
	})

	It("rejects a mismatched token and stays locked", func() {
		token := keyhash.Sum64([]byte("secret"))
		v := vault.New(newFacade(), &token)

		err := v.TryUnlock(keyhash.Sum64([]byte("wrong")))
		Expect(errors.Is(err, srverr.ErrUnauthorized)).To(BeTrue())
		Expect(v.Locked()).To(BeTrue())
	})

	It("clones into an independently-lockable Vault (Property 5 isolation)", func() {
		token := keyhash.Sum64([]byte("secret"))
		shared := vault.New(newFacade(), &token)

		connA := shared.Clone()
		connB := shared.Clone()

		Expect(connA.TryUnlock(token)).To(Succeed())
		Expect(connA.Locked()).To(BeFalse())
		Expect(connB.Locked()).To(BeTrue())
	})
})
