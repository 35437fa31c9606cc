package engine_test

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/allocator"
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/engine"
	"github.com/papercache/papercache/internal/srverr"
)

func newEngine(policy cache.Policy, maxSize uint64) (*engine.Engine, func()) {
	dir := GinkgoT().TempDir()
	a := allocator.New(1<<20, filepath.Join(dir, "slow.arena"), 1<<20)

	e, err := engine.New(engine.Config{
		MaxSize:       maxSize,
		AllowedPolicy: []cache.Policy{cache.PolicyLFU, cache.PolicyFIFO, cache.PolicyLRU, cache.PolicyMRU},
		InitialPolicy: policy,
		SweepInterval: 10 * time.Millisecond,
		Version:       "test",
		Alloc:         a,
	})
	Expect(err).ToNot(HaveOccurred())

	return e, func() {
		_ = e.Close()
		_ = a.Close()
	}
}

var _ = Describe("Engine", func() {
	Context("round trip (Property 2)", func() {
		It("returns what was Set, and Has/Size agree", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			Expect(e.Set(1, []byte("bar"), nil)).To(Succeed())

			v, err := e.Get(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal([]byte("bar")))

			Expect(e.Has(1)).To(BeTrue())

			n, err := e.Size(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(uint32(3)))
		})
	})

	Context("deletion (Property 3)", func() {
		It("makes Get and Has report absence after Del", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			Expect(e.Set(1, []byte("bar"), nil)).To(Succeed())
			Expect(e.Del(1)).To(Succeed())

			_, err := e.Get(1)
			Expect(errors.Is(err, srverr.ErrKeyNotFound)).To(BeTrue())
			Expect(e.Has(1)).To(BeFalse())
		})

		It("fails with KeyNotFound deleting an absent key", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			err := e.Del(99)
			Expect(errors.Is(err, srverr.ErrKeyNotFound)).To(BeTrue())
		})
	})

	Context("peek non-promotion (Property 4)", func() {
		It("does not protect a key from LRU eviction the way Get would", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 6)
			defer cleanup()

			Expect(e.Set(1, []byte("aa"), nil)).To(Succeed()) // oldest
			Expect(e.Set(2, []byte("bb"), nil)).To(Succeed())
			Expect(e.Set(3, []byte("cc"), nil)).To(Succeed())

			_, err := e.Peek(1)
			Expect(err).ToNot(HaveOccurred())

			// Cache is full (6/6 bytes); inserting a 4th 2-byte value must
			// evict key 1 despite the Peek, since Peek must not promote it.
			Expect(e.Set(4, []byte("dd"), nil)).To(Succeed())

			Expect(e.Has(1)).To(BeFalse())
			Expect(e.Has(2)).To(BeTrue())
			Expect(e.Has(3)).To(BeTrue())
			Expect(e.Has(4)).To(BeTrue())
		})

		It("protects a key from LRU eviction when Get (not Peek) touched it", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 6)
			defer cleanup()

			Expect(e.Set(1, []byte("aa"), nil)).To(Succeed())
			Expect(e.Set(2, []byte("bb"), nil)).To(Succeed())
			Expect(e.Set(3, []byte("cc"), nil)).To(Succeed())

			_, err := e.Get(1)
			Expect(err).ToNot(HaveOccurred())

			Expect(e.Set(4, []byte("dd"), nil)).To(Succeed())

			Expect(e.Has(1)).To(BeTrue())
			Expect(e.Has(2)).To(BeFalse())
		})
	})

	Context("budget invariant (Property 7)", func() {
		It("never reports used_size above max_size after a sequence of operations", func() {
			e, cleanup := newEngine(cache.PolicyFIFO, 10)
			defer cleanup()

			Expect(e.Set(1, []byte("abcde"), nil)).To(Succeed())
			Expect(e.Set(2, []byte("fghij"), nil)).To(Succeed())
			Expect(e.Set(3, []byte("klmno"), nil)).To(Succeed())

			Expect(e.Stats().UsedSize).To(BeNumerically("<=", 10))
		})

		It("rejects a value larger than max_size and leaves the prior mapping unchanged (Invariant I4)", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 4)
			defer cleanup()

			Expect(e.Set(1, []byte("ab"), nil)).To(Succeed())

			err := e.Set(1, []byte("too big!!"), nil)
			Expect(errors.Is(err, srverr.ErrExceedingValueSize)).To(BeTrue())

			v, getErr := e.Get(1)
			Expect(getErr).ToNot(HaveOccurred())
			Expect(v).To(Equal([]byte("ab")))
		})

		It("rejects a zero-length value", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 4)
			defer cleanup()

			err := e.Set(1, nil, nil)
			Expect(errors.Is(err, srverr.ErrZeroValueSize)).To(BeTrue())
		})
	})

	Context("Resize (S6)", func() {
		It("rejects a resize to zero", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			err := e.Resize(0)
			Expect(errors.Is(err, srverr.ErrZeroCacheSize)).To(BeTrue())
		})

		It("evicts down to the new budget before accepting it", func() {
			e, cleanup := newEngine(cache.PolicyFIFO, 10)
			defer cleanup()

			Expect(e.Set(1, []byte("aaaaa"), nil)).To(Succeed())
			Expect(e.Set(2, []byte("bbbbb"), nil)).To(Succeed())

			Expect(e.Resize(5)).To(Succeed())
			Expect(e.Stats().UsedSize).To(BeNumerically("<=", 5))
			Expect(e.Has(1)).To(BeFalse())
			Expect(e.Has(2)).To(BeTrue())
		})
	})

	Context("MRU eviction", func() {
		It("evicts the most recently touched entry instead of the oldest", func() {
			e, cleanup := newEngine(cache.PolicyMRU, 6)
			defer cleanup()

			Expect(e.Set(1, []byte("aa"), nil)).To(Succeed())
			Expect(e.Set(2, []byte("bb"), nil)).To(Succeed())
			Expect(e.Set(3, []byte("cc"), nil)).To(Succeed())

			_, err := e.Get(3)
			Expect(err).ToNot(HaveOccurred())

			Expect(e.Set(4, []byte("dd"), nil)).To(Succeed())

			Expect(e.Has(3)).To(BeFalse())
			Expect(e.Has(1)).To(BeTrue())
			Expect(e.Has(2)).To(BeTrue())
		})
	})

	Context("LFU eviction", func() {
		It("evicts the least-frequently accessed entry", func() {
			e, cleanup := newEngine(cache.PolicyLFU, 6)
			defer cleanup()

			Expect(e.Set(1, []byte("aa"), nil)).To(Succeed())
			Expect(e.Set(2, []byte("bb"), nil)).To(Succeed())
			Expect(e.Set(3, []byte("cc"), nil)).To(Succeed())

			_, _ = e.Get(1)
			_, _ = e.Get(1)
			_, _ = e.Get(2)

			Expect(e.Set(4, []byte("dd"), nil)).To(Succeed())

			Expect(e.Has(3)).To(BeFalse())
			Expect(e.Has(1)).To(BeTrue())
			Expect(e.Has(2)).To(BeTrue())
		})
	})

	Context("TTL expiry", func() {
		It("treats a key as absent once its TTL has elapsed", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			ttl := 10 * time.Millisecond
			Expect(e.Set(1, []byte("bar"), &ttl)).To(Succeed())

			Eventually(func() bool {
				return e.Has(1)
			}, "500ms", "10ms").Should(BeFalse())
		})

		It("clears a TTL via SetTTL(nil)", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			ttl := 10 * time.Millisecond
			Expect(e.Set(1, []byte("bar"), &ttl)).To(Succeed())
			Expect(e.SetTTL(1, nil)).To(Succeed())

			Consistently(func() bool {
				return e.Has(1)
			}, "60ms", "10ms").Should(BeTrue())
		})
	})

	Context("Stats", func() {
		It("reports the active policy and max size", func() {
			e, cleanup := newEngine(cache.PolicyFIFO, 100)
			defer cleanup()

			s := e.Stats()
			Expect(s.Policy).To(Equal(cache.PolicyFIFO))
			Expect(s.MaxSize).To(Equal(uint64(100)))
		})
	})

	Context("SetPolicy", func() {
		It("rejects a policy outside the allowed set", func() {
			dir := GinkgoT().TempDir()
			a := allocator.New(1<<20, filepath.Join(dir, "slow.arena"), 1<<20)
			defer a.Close()

			e, err := engine.New(engine.Config{
				MaxSize:       64,
				AllowedPolicy: []cache.Policy{cache.PolicyLRU},
				InitialPolicy: cache.PolicyLRU,
				Version:       "test",
				Alloc:         a,
			})
			Expect(err).ToNot(HaveOccurred())
			defer e.Close()

			err = e.SetPolicy(cache.PolicyLFU)
			Expect(errors.Is(err, srverr.ErrUnconfiguredPolicy)).To(BeTrue())
		})

		It("migrates existing entries to the new policy's structure", func() {
			e, cleanup := newEngine(cache.PolicyLRU, 1024)
			defer cleanup()

			Expect(e.Set(1, []byte("aa"), nil)).To(Succeed())
			Expect(e.SetPolicy(cache.PolicyLFU)).To(Succeed())

			v, err := e.Get(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal([]byte("aa")))
		})
	})
})
