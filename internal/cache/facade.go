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

package cache

import "time"

// Facade is the concurrency-safe handle every connection handler shares
// (spec §4.5, §9 "reference-counted handle type rather than owning graph
// nodes"). It holds one Engine by reference; all of its methods simply
// forward to that Engine, whose own internal synchronization is what
// makes concurrent use safe.
type Facade struct {
	engine Engine
}

// NewFacade wraps eng in a Facade. eng must already be safe for
// concurrent use.
func NewFacade(eng Engine) *Facade {
	return &Facade{engine: eng}
}

func (f *Facade) Get(key uint64) ([]byte, error)  { return f.engine.Get(key) }
func (f *Facade) Peek(key uint64) ([]byte, error) { return f.engine.Peek(key) }
func (f *Facade) Has(key uint64) bool             { return f.engine.Has(key) }

func (f *Facade) Set(key uint64, value []byte, ttl *time.Duration) error {
	return f.engine.Set(key, value, ttl)
}

func (f *Facade) Del(key uint64) error { return f.engine.Del(key) }

func (f *Facade) SetTTL(key uint64, ttl *time.Duration) error {
	return f.engine.SetTTL(key, ttl)
}

func (f *Facade) Size(key uint64) (uint32, error) { return f.engine.Size(key) }
func (f *Facade) Wipe()                           { f.engine.Wipe() }
func (f *Facade) Resize(maxBytes uint64) error    { return f.engine.Resize(maxBytes) }
func (f *Facade) SetPolicy(p Policy) error        { return f.engine.SetPolicy(p) }
func (f *Facade) Stats() Stats                    { return f.engine.Stats() }
func (f *Facade) Version() string                 { return f.engine.Version() }
func (f *Facade) Close() error                    { return f.engine.Close() }
