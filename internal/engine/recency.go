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

package engine

import (
	"container/list"

	"github.com/papercache/papercache/internal/cache"
)

// recencyInsert adds a brand-new entry to the front of the shared
// doubly-linked list used by LRU, MRU and FIFO alike; they differ only in
// which end touch/evict operate on.
func (e *Engine) recencyInsert(en *entry) {
	en.elem = e.recency.PushFront(en)
}

func (e *Engine) recencyRemove(en *entry) {
	e.recency.Remove(en.elem)
}

// recencyTouch reflects a Get against the active policy. FIFO never
// reorders on access (spec §4.5/§D); LRU and MRU both promote to the
// front on Get, differing only in which end recencyEvict takes from.
func (e *Engine) recencyTouch(en *entry) {
	switch e.policy {
	case cache.PolicyLRU, cache.PolicyMRU:
		e.recency.MoveToFront(en.elem)
	case cache.PolicyFIFO:
		// no-op: FIFO order is fixed at insertion time
	}
}

// recencyEvict removes and returns the entry the active policy selects
// for eviction: LRU and FIFO take the least-recently-touched/oldest
// entry from the back; MRU takes the most-recently-touched entry from
// the front.
func (e *Engine) recencyEvict() *entry {
	var elem *list.Element

	switch e.policy {
	case cache.PolicyMRU:
		elem = e.recency.Front()
	default: // LRU, FIFO
		elem = e.recency.Back()
	}

	if elem == nil {
		return nil
	}

	en := elem.Value.(*entry)
	e.recency.Remove(elem)
	return en
}
