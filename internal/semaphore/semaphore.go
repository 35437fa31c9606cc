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

// Package semaphore bounds the Listener's concurrent handler count (spec
// §4.7, Component G: "a semaphore with max_connections permits bounds
// concurrent handlers"). It wraps golang.org/x/sync/semaphore.Weighted
// with the blocking/non-blocking acquire pair the listener's accept loop
// needs (NewWorker for the common case, NewWorkerTry for the immediate
// max-connections rejection in S4) plus a WaitGroup fallback for an
// unlimited configuration.
package semaphore

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// MaxSimultaneous returns the default permit count used when a caller
// asks for zero — the number of logical CPUs available to the process.
func MaxSimultaneous() int {
	return runtime.GOMAXPROCS(0)
}

// SetSimultaneous clamps n into the valid permit range: MaxSimultaneous
// when n is non-positive or exceeds MaxSimultaneous, else n itself.
func SetSimultaneous(n int64) int64 {
	max := int64(MaxSimultaneous())
	if n < 1 || n > max {
		return max
	}
	return n
}

// Semaphore bounds concurrent "workers" (handler goroutines) to a fixed
// count, or leaves them unlimited when constructed with a negative count.
type Semaphore struct {
	ctx    context.Context
	cancel context.CancelFunc

	n        int64
	weighted *semaphore.Weighted
	wg       *sync.WaitGroup
}

// New builds a Semaphore bound to ctx. n == 0 uses MaxSimultaneous; n < 0
// builds an unlimited, WaitGroup-backed Semaphore; n > 0 builds a
// weighted Semaphore with exactly n permits.
func New(ctx context.Context, n int64) *Semaphore {
	switch {
	case n == 0:
		n = int64(MaxSimultaneous())
	case n < 0:
		n = -1
	}

	childCtx, cancel := context.WithCancel(ctx)
	s := &Semaphore{ctx: childCtx, cancel: cancel, n: n}

	if n < 0 {
		s.wg = &sync.WaitGroup{}
	} else {
		s.weighted = semaphore.NewWeighted(n)
	}

	return s
}

// New returns a fresh Semaphore with the same permit count, inheriting
// this Semaphore's context (so canceling the parent eventually cancels
// the child too).
func (s *Semaphore) New() *Semaphore {
	return New(s.ctx, s.n)
}

// Weighted returns the configured permit count, or -1 for unlimited.
func (s *Semaphore) Weighted() int64 {
	return s.n
}

// Err returns the bound context's error, non-nil once the Semaphore has
// been shut down via DeferMain or the parent context was canceled.
func (s *Semaphore) Err() error {
	return s.ctx.Err()
}

// NewWorker blocks until a permit is available or the context is
// canceled, in which case it returns the context's error.
func (s *Semaphore) NewWorker() error {
	if s.weighted == nil {
		s.wg.Add(1)
		return nil
	}
	return s.weighted.Acquire(s.ctx, 1)
}

// NewWorkerTry acquires a permit without blocking, reporting whether one
// was available (spec §4.7: the listener uses this to reject a
// connection immediately with MaxConnectionsExceeded rather than queue
// it).
func (s *Semaphore) NewWorkerTry() bool {
	if s.weighted == nil {
		s.wg.Add(1)
		return true
	}
	return s.weighted.TryAcquire(1)
}

// DeferWorker releases one permit acquired via NewWorker or
// NewWorkerTry.
func (s *Semaphore) DeferWorker() {
	if s.weighted == nil {
		s.wg.Done()
		return
	}
	s.weighted.Release(1)
}

// WaitAll blocks until every currently-held permit has been released, or
// the context is canceled.
func (s *Semaphore) WaitAll() error {
	if s.weighted == nil {
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}

	if err := s.weighted.Acquire(s.ctx, s.n); err != nil {
		return err
	}
	s.weighted.Release(s.n)
	return nil
}

// DeferMain shuts this Semaphore down, canceling its context so any
// Semaphore built from it via New() observes cancellation too.
func (s *Semaphore) DeferMain() {
	s.cancel()
}
