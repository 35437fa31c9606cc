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

import "container/list"

// freqBucket groups every entry currently sharing the same access count,
// giving the classic O(1) LFU structure: buckets are kept in ascending
// frequency order in e.buckets, and within a bucket entries are kept in
// recency order so that ties break least-recently-used first.
type freqBucket struct {
	freq    uint64
	entries *list.List // of *entry
}

// lfuEnsureBucket returns the bucket for frequency f, creating and
// splicing it into ascending position if absent.
func (e *Engine) lfuEnsureBucket(f uint64) *freqBucket {
	for n := e.buckets.Front(); n != nil; n = n.Next() {
		b := n.Value.(*freqBucket)
		if b.freq == f {
			return b
		}
		if b.freq > f {
			nb := &freqBucket{freq: f, entries: list.New()}
			e.buckets.InsertBefore(nb, n)
			return nb
		}
	}

	nb := &freqBucket{freq: f, entries: list.New()}
	e.buckets.PushBack(nb)
	return nb
}

func (e *Engine) findBucketNode(b *freqBucket) *list.Element {
	for n := e.buckets.Front(); n != nil; n = n.Next() {
		if n.Value.(*freqBucket) == b {
			return n
		}
	}
	return nil
}

// lfuInsert adds a brand-new entry at frequency 1.
func (e *Engine) lfuInsert(en *entry) {
	en.freq = 1
	b := e.lfuEnsureBucket(1)
	en.elem = b.entries.PushFront(en)
	en.bucket = e.findBucketNode(b)
}

// lfuBump increments en's access count and moves it into the bucket for
// the new frequency, dropping the old bucket once it is empty.
func (e *Engine) lfuBump(en *entry) {
	old := en.bucket.Value.(*freqBucket)
	old.entries.Remove(en.elem)
	if old.entries.Len() == 0 {
		e.buckets.Remove(en.bucket)
	}

	en.freq++
	nb := e.lfuEnsureBucket(en.freq)
	en.elem = nb.entries.PushFront(en)
	en.bucket = e.findBucketNode(nb)
}

// lfuRemove detaches en from its bucket, dropping the bucket if it is
// left empty.
func (e *Engine) lfuRemove(en *entry) {
	b := en.bucket.Value.(*freqBucket)
	b.entries.Remove(en.elem)
	if b.entries.Len() == 0 {
		e.buckets.Remove(en.bucket)
	}
}

// lfuEvict removes and returns the least-frequently-used entry, breaking
// ties by least-recently-used within the lowest-frequency bucket.
func (e *Engine) lfuEvict() *entry {
	n := e.buckets.Front()
	if n == nil {
		return nil
	}

	b := n.Value.(*freqBucket)
	back := b.entries.Back()
	if back == nil {
		return nil
	}

	en := back.Value.(*entry)
	b.entries.Remove(back)
	if b.entries.Len() == 0 {
		e.buckets.Remove(n)
	}

	return en
}
