package allocator_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/allocator"
)

var _ = Describe("Allocator", func() {
	var a *allocator.Allocator

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		a = allocator.New(4<<20, filepath.Join(dir, "slow.arena"), 1<<20)
	})

	AfterEach(func() {
		Expect(a.Close()).To(Succeed())
	})

	It("serves a small allocation from the DRAM tier and tracks dram_used", func() {
		b, err := a.Alloc(128)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(HaveLen(128))
		Expect(a.DRAMUsed()).To(Equal(int64(128)))
	})

	It("releases dram_used on Free", func() {
		b, err := a.Alloc(256)
		Expect(err).ToNot(HaveOccurred())
		Expect(a.DRAMUsed()).To(Equal(int64(256)))

		a.Free(b)
		Expect(a.DRAMUsed()).To(Equal(int64(0)))
	})

	It("routes an allocation that would cross the DRAM budget to the slow tier", func() {
		dir := GinkgoT().TempDir()
		small := allocator.New(64, filepath.Join(dir, "slow.arena"), 1<<20)
		defer small.Close()

		// margin alone (1 MiB) already exceeds the 64-byte DRAM limit, so
		// every allocation routes to the slow tier regardless of size.
		b, err := small.Alloc(32)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(HaveLen(32))
		Expect(small.DRAMUsed()).To(Equal(int64(0)))
	})

	It("round-trips distinct payloads without corrupting adjacent allocations", func() {
		b1, err := a.Alloc(8)
		Expect(err).ToNot(HaveOccurred())
		copy(b1, []byte("aaaaaaaa"))

		b2, err := a.Alloc(8)
		Expect(err).ToNot(HaveOccurred())
		copy(b2, []byte("bbbbbbbb"))

		Expect(string(b1)).To(Equal("aaaaaaaa"))
		Expect(string(b2)).To(Equal("bbbbbbbb"))
	})
})
