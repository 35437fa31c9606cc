/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package allocator implements PaperCache's hybrid tiered global allocator
// (spec §4.1, Component A): every object payload the cache engine stores is
// allocated through here, routed between a fast DRAM tier and a slow
// persistent-memory tier under a configured byte budget.
//
// The original system binds a C allocator (memkind's MEMKIND_DAX_KMEM) as
// its slow tier through cgo-equivalent foreign-function bindings
// (original_source/src/allocator.rs). PaperCache's slow tier is a
// file-backed, memory-mapped arena opened with golang.org/x/sys/unix —
// the closest idiomatic Go analogue of a device-DAX-backed region — with
// its own first-fit free list.
//
// Go has no process-wide allocator override (unlike Rust's
// #[global_allocator]), so this package is an explicit, narrow API
// (Alloc/Free) that the cache engine calls for every entry's backing
// buffer, rather than a transparent substitute for make([]byte, n).
package allocator

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// headerSize is the size in bytes of the self-describing record written
// immediately before every user allocation (spec §4.1 step 1). It holds
// the tier tag and, for the slow tier, the byte length needed to return
// the block to the free list.
const headerSize = 16

// tier identifies which backend produced an allocation.
type tier uint8

const (
	tierDRAM tier = iota
	tierSlow
)

// Allocator routes allocation requests between the fast (DRAM) and slow
// (persistent-memory) tiers under a configured byte budget.
//
// Why a header approach: Free receives no tier information from its
// caller, so every allocation must be self-identifying. A fixed-size
// prefix beats a side-table — no global map, no contention on free.
type Allocator struct {
	dramUsed  atomic.Int64
	dramLimit int64
	margin    int64

	slowOnce sync.Once
	slowPath string
	slowCap  int64
	slow     *slowTier
	slowErr  error
}

// defaultMargin is reserved DRAM headroom (spec §4.1: "margin 1 MiB to
// cover header slack") below which the allocator stops routing to DRAM.
const defaultMargin = 1 << 20

// New returns an Allocator with the given DRAM budget in bytes. The slow
// tier is described but not opened; it initializes lazily, exactly once,
// on first use (spec §6.3).
func New(dramLimit int64, slowTierPath string, slowTierCapacity int64) *Allocator {
	return &Allocator{
		dramLimit: dramLimit,
		margin:    defaultMargin,
		slowPath:  slowTierPath,
		slowCap:   slowTierCapacity,
	}
}

// DRAMUsed returns bytes currently charged to the fast tier.
func (a *Allocator) DRAMUsed() int64 {
	return a.dramUsed.Load()
}

// Alloc returns a buffer of length n backed by whichever tier the current
// DRAM budget routes to (spec §4.1 steps 1-4).
//
// The fast tier is the Go heap, where running out of memory is fatal to
// the process: Alloc does not report a fast-tier failure to the caller,
// and the returned error is always nil. A slow-tier failure after the
// DRAM budget has been crossed is
// unrecoverable and aborts the process (spec §4.1, §7.5, §9): a silent
// fallback to DRAM would violate the configured memory budget.
func (a *Allocator) Alloc(n uint32) ([]byte, error) {
	if int64(n) <= a.dramLimit-a.margin-a.dramUsed.Load() {
		a.dramUsed.Add(int64(n))
		return makeDRAM(n), nil
	}

	s, err := a.ensureSlowTier()
	if err != nil {
		panic(fmt.Sprintf("allocator: slow tier unavailable past DRAM budget: %v", err))
	}

	b, err := s.alloc(n)
	if err != nil {
		panic(fmt.Sprintf("allocator: slow tier allocation failed past DRAM budget: %v", err))
	}

	return b, nil
}

// Free returns a previously allocated buffer to its owning tier. Free is a
// no-op on a nil or empty buffer.
func (a *Allocator) Free(b []byte) {
	if len(b) == 0 {
		return
	}

	if isDRAM(b) {
		a.dramUsed.Add(-int64(len(b)))
		return
	}

	if a.slow != nil {
		a.slow.free(b)
	}
}

func (a *Allocator) ensureSlowTier() (*slowTier, error) {
	a.slowOnce.Do(func() {
		a.slow, a.slowErr = openSlowTier(a.slowPath, a.slowCap)
	})
	return a.slow, a.slowErr
}

// Close releases the slow-tier backing file, if one was opened.
func (a *Allocator) Close() error {
	if a.slow == nil {
		return nil
	}
	return a.slow.close()
}
