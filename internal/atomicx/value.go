/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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
 *
 */

// Package atomicx is a minimal generic wrapper over sync/atomic.Value.
// PaperCache's Listener uses Value[int64] to track its live connection
// count without taking a lock on the accept/close hot path.
package atomicx

import "sync/atomic"

// Value is a type-safe, lock-free container for a comparable T.
type Value[T comparable] interface {
	Load() T
	Store(val T)
	Swap(val T) (old T)
	CompareAndSwap(old, new T) (swapped bool)
}

type value[T comparable] struct {
	v atomic.Value
}

// NewValue returns a Value[T] seeded with the zero value of T, so Load
// never has to special-case an empty underlying atomic.Value.
func NewValue[T comparable]() Value[T] {
	o := &value[T]{}

	var zero T
	o.v.Store(zero)

	return o
}

func (o *value[T]) Load() T {
	return o.v.Load().(T)
}

func (o *value[T]) Store(val T) {
	o.v.Store(val)
}

func (o *value[T]) Swap(val T) (old T) {
	return o.v.Swap(val).(T)
}

func (o *value[T]) CompareAndSwap(old, new T) (swapped bool) {
	return o.v.CompareAndSwap(old, new)
}
