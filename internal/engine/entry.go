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
	"time"
)

// entry is one stored object (spec §3, "Object"): its reported memory
// footprint equals len(value), and its backing bytes come from the
// shared hybrid allocator (Component A) rather than a plain make([]byte).
type entry struct {
	key     uint64
	value   []byte
	expires time.Time // zero value means no TTL
	freq    uint64    // access count, used only by the LFU structure

	elem   *list.Element // this entry's node in the active recency/FIFO list
	bucket *list.Element // this entry's frequency bucket node, LFU only
}

func (e *entry) hasTTL() bool {
	return !e.expires.IsZero()
}

func (e *entry) expired(now time.Time) bool {
	return e.hasTTL() && !now.Before(e.expires)
}
