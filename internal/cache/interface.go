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

// Package cache defines the Cache Facade (spec §4.5, Component E): the
// concurrency-safe contract between the command executor and whichever
// eviction engine is plugged in underneath it.
//
// The engine itself (LFU/FIFO/LRU/MRU bookkeeping, size accounting, TTL
// expiry) is spec'd only as this interface (spec §6.2); internal/engine
// supplies the reference implementation this repository ships. Keeping
// the boundary as an interface is what the spec's design notes call a
// reference-counted handle rather than an owned graph: the Facade holds
// one Engine by reference, safe for concurrent use from every connection
// handler.
package cache

import "time"

// Stats is a point-in-time snapshot of cache-wide counters (spec §4.5,
// wire Stats response body in §6.1). Implementations need not read the
// counters atomically relative to one another (spec §6.2).
type Stats struct {
	MaxSize    uint64
	UsedSize   uint64
	TotalGets  uint64
	TotalSets  uint64
	TotalDels  uint64
	MissRatio  float64
	Policy     Policy
	UptimeSecs uint64
}

// Engine is the contract an eviction engine must satisfy (spec §6.2).
// Keys are pre-hashed 64-bit integers; the server hashes client-supplied
// key bytes before ever calling into the Engine (spec §3, "Key").
//
// Every method must be safe for concurrent invocation from multiple
// connection handlers; internal synchronization is the Engine's own
// responsibility (spec §4.5).
type Engine interface {
	// Get returns the value for key, updating recency/frequency tracking.
	// Returns srverr.ErrKeyNotFound if the key is absent.
	Get(key uint64) ([]byte, error)

	// Set stores value under key with an optional ttl (nil means no
	// expiry). Returns srverr.ErrZeroValueSize for an empty value or
	// srverr.ErrExceedingValueSize if value would not fit in the
	// configured budget (the prior mapping, if any, is left unchanged).
	Set(key uint64, value []byte, ttl *time.Duration) error

	// Del removes key. Returns srverr.ErrKeyNotFound if absent.
	Del(key uint64) error

	// Has reports whether key is present (and unexpired), without
	// affecting recency/frequency tracking.
	Has(key uint64) bool

	// Peek returns the value for key without updating recency/frequency
	// tracking (spec Property 4). Returns srverr.ErrKeyNotFound if absent.
	Peek(key uint64) ([]byte, error)

	// SetTTL replaces key's expiry. Returns srverr.ErrKeyNotFound if
	// absent.
	SetTTL(key uint64, ttl *time.Duration) error

	// Size returns the byte length of key's value. Returns
	// srverr.ErrKeyNotFound if absent.
	Size(key uint64) (uint32, error)

	// Wipe removes every entry.
	Wipe()

	// Resize changes the cache's byte budget, evicting down to the new
	// budget first if it is smaller than the current used size. Returns
	// srverr.ErrZeroCacheSize for a zero budget.
	Resize(maxBytes uint64) error

	// SetPolicy switches the active eviction discipline. Returns
	// srverr.ErrUnconfiguredPolicy if p is not in the engine's allowed
	// set, or srverr.ErrInvalidPolicy for an unrecognized tag.
	SetPolicy(p Policy) error

	// Stats returns a snapshot of cache-wide counters.
	Stats() Stats

	// Version returns the engine's version string.
	Version() string

	// Close stops any background work (e.g. a TTL sweep goroutine) and
	// releases engine-owned resources.
	Close() error
}
