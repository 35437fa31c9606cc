package wire_test

import (
	"bufio"
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/wire"
)

var _ = Describe("Decoder", func() {
	It("decodes a Ping frame, which has no body (S1)", func() {
		d := wire.NewDecoder()

		// Ping (S1): command byte 0x00, no body.
		d.Feed([]byte{0x00})
		cmd, ok, err := d.TryDecode()
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cmd.Kind).To(Equal(wire.KindPing))
	})

	It("decodes Set (S2) with key, value and ttl fields", func() {
		d := wire.NewDecoder()

		// 04 | key="foo" | value="bar" | ttl=0
		frame := []byte{0x04,
			0x03, 0x00, 0x00, 0x00, 'f', 'o', 'o',
			0x03, 0x00, 0x00, 0x00, 'b', 'a', 'r',
			0x00, 0x00, 0x00, 0x00,
		}
		d.Feed(frame)

		cmd, ok, err := d.TryDecode()
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cmd.Kind).To(Equal(wire.KindSet))
		Expect(cmd.Key).To(Equal([]byte("foo")))
		Expect(cmd.Value).To(Equal([]byte("bar")))
		Expect(cmd.TTL).To(Equal(uint32(0)))
	})

	It("signals incomplete rather than erroring when bytes are still arriving", func() {
		d := wire.NewDecoder()
		// Set frame's key length says 3 bytes but only 1 has arrived.
		d.Feed([]byte{0x04, 0x03, 0x00, 0x00, 0x00, 'f'})

		cmd, ok, err := d.TryDecode()
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(cmd).To(BeNil())
	})

	It("rejects an unknown command byte as a protocol error", func() {
		d := wire.NewDecoder()
		d.Feed([]byte{0xFE})

		_, _, err := d.TryDecode()
		Expect(err).To(HaveOccurred())
	})

	It("round-trips decode(encode(c)) == c for Resize (Property 6)", func() {
		d := wire.NewDecoder()
		d.Feed(append([]byte{byte(wire.KindResize)}, wire.EncodeU64(0)...))

		cmd, ok, err := d.TryDecode()
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cmd.Kind).To(Equal(wire.KindResize))
		Expect(cmd.ResizeBytes).To(Equal(uint64(0)))
	})
})

var _ = Describe("response framing", func() {
	It("writes the exact Ping success frame from the spec's seed scenario S1", func() {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)

		Expect(wire.WriteSuccess(w, wire.EncodeBuf([]byte("pong")))).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{
			0x21, 0x04, 0x00, 0x00, 0x00, 0x70, 0x6F, 0x6E, 0x67,
		}))
	})

	It("writes the exact KeyNotFound failure frame from seed scenario S3", func() {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)

		Expect(wire.WriteFailure(w, srverr.ErrKeyNotFound)).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{0x3F, 0x00, 0x01}))
	})

	It("writes the exact ZeroCacheSize failure frame from seed scenario S6", func() {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)

		Expect(wire.WriteFailure(w, srverr.ErrZeroCacheSize)).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{0x3F, 0x00, 0x04}))
	})

	It("writes the exact Unauthorized failure frame with no subcode", func() {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)

		Expect(wire.WriteFailure(w, srverr.ErrUnauthorized)).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{0x3F, 0x03}))
	})

	It("writes a one-byte success handshake frame", func() {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)

		Expect(wire.WriteHandshake(w)).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{0x21}))
	})
})
