package keyhash_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/keyhash"
)

var _ = Describe("Sum64", func() {
	It("is deterministic for the same bytes", func() {
		Expect(keyhash.Sum64([]byte("foo"))).To(Equal(keyhash.Sum64([]byte("foo"))))
	})

	It("differs for different bytes", func() {
		Expect(keyhash.Sum64([]byte("foo"))).ToNot(Equal(keyhash.Sum64([]byte("bar"))))
	})

	It("hashes the empty key to a stable value", func() {
		Expect(keyhash.Sum64(nil)).To(Equal(keyhash.Sum64([]byte{})))
	})
})
