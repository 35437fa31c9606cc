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

import "time"

// sweepLoop actively reclaims expired entries on a ticker, grounded on
// the teacher's cache/model.go "ticker(exp)" pattern. Expiry is also
// checked lazily on every access (Get/Peek/Has/Del/Size), so the sweep
// only needs to catch keys nobody touches again before they expire.
func (e *Engine) sweepLoop() {
	defer close(e.sweepDone)

	t := time.NewTicker(e.sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-e.sweepStop:
			return
		case <-t.C:
			e.sweepOnce()
		}
	}
}

func (e *Engine) sweepOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	var expired []*entry

	for _, en := range e.index {
		if en.expired(now) {
			expired = append(expired, en)
		}
	}

	for _, en := range expired {
		e.removeLocked(en)
	}
}
