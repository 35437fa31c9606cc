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

// Package engine is the reference implementation of the cache.Engine
// contract (spec §4.5/§6.2, PART II §D of SPEC_FULL): LFU, FIFO, LRU and
// MRU eviction, size accounting, and TTL expiry.
//
// The spec treats the engine's internals as an external collaborator and
// specifies only the interface (cache.Engine); a runnable, testable
// server still needs a concrete one, so this package supplies it,
// grounded on the teacher's cache package (model.go's ticker-driven
// sweep) and the classic O(1) LFU bucket structure.
package engine

import (
	"container/list"
	"sync"
	"time"

	"github.com/papercache/papercache/internal/allocator"
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/srverr"
)

// Engine is the reference eviction engine. All exported methods are safe
// for concurrent use (spec §4.5); a single mutex guards both the index
// and whichever policy structure (recency list or frequency buckets) is
// active, since every Get on LRU/MRU mutates that structure too.
type Engine struct {
	mu sync.Mutex

	alloc *allocator.Allocator
	index map[uint64]*entry

	recency *list.List // LRU, MRU, FIFO
	buckets *list.List // LFU, of *freqBucket

	policy  cache.Policy
	allowed map[cache.Policy]bool

	maxSize  uint64
	usedSize uint64

	totalGets   uint64
	totalMisses uint64
	totalSets   uint64
	totalDels   uint64

	version   string
	startedAt time.Time

	sweepInterval time.Duration
	sweepStop     chan struct{}
	sweepDone     chan struct{}
}

// Config bundles the construction-time parameters for a reference
// engine.
type Config struct {
	MaxSize       uint64
	AllowedPolicy []cache.Policy
	InitialPolicy cache.Policy
	SweepInterval time.Duration
	Version       string
	Alloc         *allocator.Allocator
}

// defaultSweepInterval matches a conservative, low-overhead TTL sweep
// cadence; most expiry is caught lazily on access anyway (spec §D).
const defaultSweepInterval = time.Second

// New builds a reference engine and starts its TTL sweep goroutine.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxSize == 0 {
		return nil, srverr.NewCacheEngine(srverr.SubcodeZeroCacheSize, nil)
	}

	allowed := make(map[cache.Policy]bool, len(cfg.AllowedPolicy))
	for _, p := range cfg.AllowedPolicy {
		allowed[p] = true
	}

	if !allowed[cfg.InitialPolicy] {
		return nil, srverr.NewCacheEngine(srverr.SubcodeUnconfiguredPolicy, nil)
	}

	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	e := &Engine{
		alloc:         cfg.Alloc,
		index:         make(map[uint64]*entry),
		recency:       list.New(),
		buckets:       list.New(),
		policy:        cfg.InitialPolicy,
		allowed:       allowed,
		maxSize:       cfg.MaxSize,
		version:       cfg.Version,
		startedAt:     time.Now(),
		sweepInterval: interval,
		sweepStop:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}

	go e.sweepLoop()

	return e, nil
}

func (e *Engine) Get(key uint64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	if !ok || en.expired(time.Now()) {
		e.totalGets++
		e.totalMisses++
		if ok {
			e.removeLocked(en)
		}
		return nil, srverr.ErrKeyNotFound
	}

	e.totalGets++
	e.touchLocked(en)

	out := make([]byte, len(en.value))
	copy(out, en.value)
	return out, nil
}

func (e *Engine) Peek(key uint64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	if !ok || en.expired(time.Now()) {
		return nil, srverr.ErrKeyNotFound
	}

	out := make([]byte, len(en.value))
	copy(out, en.value)
	return out, nil
}

func (e *Engine) Has(key uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	return ok && !en.expired(time.Now())
}

func (e *Engine) Set(key uint64, value []byte, ttl *time.Duration) error {
	if len(value) == 0 {
		return srverr.ErrZeroValueSize
	}
	if uint64(len(value)) > e.maxSize {
		return srverr.ErrExceedingValueSize
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.index[key]; ok {
		e.removeLocked(old)
	}

	if !e.evictUntilFitsLocked(uint64(len(value))) {
		return srverr.ErrExceedingValueSize
	}

	buf, err := e.alloc.Alloc(uint32(len(value)))
	if err != nil {
		return srverr.New(srverr.CategoryResource, "allocation failed", err)
	}
	copy(buf, value)

	en := &entry{key: key, value: buf}
	if ttl != nil && *ttl > 0 {
		en.expires = time.Now().Add(*ttl)
	}

	e.insertLocked(en)
	e.usedSize += uint64(len(value))
	e.totalSets++

	return nil
}

func (e *Engine) Del(key uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	if !ok || en.expired(time.Now()) {
		return srverr.ErrKeyNotFound
	}

	e.removeLocked(en)
	e.totalDels++
	return nil
}

func (e *Engine) SetTTL(key uint64, ttl *time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	if !ok || en.expired(time.Now()) {
		return srverr.ErrKeyNotFound
	}

	if ttl != nil && *ttl > 0 {
		en.expires = time.Now().Add(*ttl)
	} else {
		en.expires = time.Time{}
	}

	return nil
}

func (e *Engine) Size(key uint64) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.index[key]
	if !ok || en.expired(time.Now()) {
		return 0, srverr.ErrKeyNotFound
	}

	return uint32(len(en.value)), nil
}

func (e *Engine) Wipe() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, en := range e.index {
		e.alloc.Free(en.value)
	}

	e.index = make(map[uint64]*entry)
	e.recency = list.New()
	e.buckets = list.New()
	e.usedSize = 0
}

func (e *Engine) Resize(maxBytes uint64) error {
	if maxBytes == 0 {
		return srverr.ErrZeroCacheSize
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.maxSize = maxBytes
	for e.usedSize > e.maxSize {
		if !e.evictOneLocked() {
			break
		}
	}

	return nil
}

func (e *Engine) SetPolicy(p cache.Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.allowed[p] {
		switch p {
		case cache.PolicyLFU, cache.PolicyFIFO, cache.PolicyLRU, cache.PolicyMRU:
			return srverr.ErrUnconfiguredPolicy
		default:
			return srverr.ErrInvalidPolicy
		}
	}

	if p == e.policy {
		return nil
	}

	e.migratePolicyLocked(p)
	e.policy = p
	return nil
}

func (e *Engine) Stats() cache.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var missRatio float64
	if e.totalGets > 0 {
		missRatio = float64(e.totalMisses) / float64(e.totalGets)
	}

	return cache.Stats{
		MaxSize:    e.maxSize,
		UsedSize:   e.usedSize,
		TotalGets:  e.totalGets,
		TotalSets:  e.totalSets,
		TotalDels:  e.totalDels,
		MissRatio:  missRatio,
		Policy:     e.policy,
		UptimeSecs: uint64(time.Since(e.startedAt).Seconds()),
	}
}

func (e *Engine) Version() string { return e.version }

func (e *Engine) Close() error {
	close(e.sweepStop)
	<-e.sweepDone
	return nil
}

// touchLocked reflects a Get against the active policy's structure.
func (e *Engine) touchLocked(en *entry) {
	if e.policy == cache.PolicyLFU {
		e.lfuBump(en)
		return
	}
	e.recencyTouch(en)
}

func (e *Engine) insertLocked(en *entry) {
	if e.policy == cache.PolicyLFU {
		e.lfuInsert(en)
	} else {
		e.recencyInsert(en)
	}
	e.index[en.key] = en
}

func (e *Engine) removeLocked(en *entry) {
	if e.policy == cache.PolicyLFU {
		e.lfuRemove(en)
	} else {
		e.recencyRemove(en)
	}
	delete(e.index, en.key)
	e.usedSize -= uint64(len(en.value))
	e.alloc.Free(en.value)
}

// evictOneLocked evicts exactly one entry under the active policy,
// reporting whether it found one to evict.
func (e *Engine) evictOneLocked() bool {
	var victim *entry
	if e.policy == cache.PolicyLFU {
		victim = e.lfuEvict()
	} else {
		victim = e.recencyEvict()
	}

	if victim == nil {
		return false
	}

	delete(e.index, victim.key)
	e.usedSize -= uint64(len(victim.value))
	e.alloc.Free(victim.value)
	return true
}

// evictUntilFitsLocked evicts entries under the active policy until n
// more bytes fit within maxSize, or there is nothing left to evict
// (Invariant I3: used bytes never exceed configured max bytes).
func (e *Engine) evictUntilFitsLocked(n uint64) bool {
	for e.usedSize+n > e.maxSize {
		if !e.evictOneLocked() {
			return false
		}
	}
	return true
}

// migratePolicyLocked rebuilds whichever structure the new policy needs
// from the current entry set, preserving each entry's relative order
// where the new policy still tracks it.
func (e *Engine) migratePolicyLocked(to cache.Policy) {
	entries := make([]*entry, 0, len(e.index))

	if e.policy == cache.PolicyLFU {
		for b := e.buckets.Front(); b != nil; b = b.Next() {
			bucket := b.Value.(*freqBucket)
			for n := bucket.entries.Front(); n != nil; n = n.Next() {
				entries = append(entries, n.Value.(*entry))
			}
		}
	} else {
		for n := e.recency.Front(); n != nil; n = n.Next() {
			entries = append(entries, n.Value.(*entry))
		}
	}

	e.recency = list.New()
	e.buckets = list.New()

	for i := len(entries) - 1; i >= 0; i-- {
		en := entries[i]
		en.elem, en.bucket, en.freq = nil, nil, 0
		if to == cache.PolicyLFU {
			e.lfuInsert(en)
		} else {
			e.recencyInsert(en)
		}
	}
}
