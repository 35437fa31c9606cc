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

package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/papercache/papercache/internal/atomicx"
	"github.com/papercache/papercache/internal/semaphore"
	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/vault"
)

// maxBackoffSeconds caps the accept-retry backoff (spec §4.7: "sleep b
// seconds ... capped at 64; if b would exceed 64, surface a fatal
// InvalidConnection").
const maxBackoffSeconds = 64

// Listener accepts connections on a bound TCP socket, bounding
// concurrent handlers with a semaphore and coordinating graceful
// shutdown (spec §4.7, Component G).
type Listener struct {
	ln      net.Listener
	sem     *semaphore.Semaphore
	vault   *vault.Vault
	version string
	log     *logrus.Logger
	conns   atomicx.Value[int64]

	wg   sync.WaitGroup
	live sync.Map // net.Conn -> struct{}, tracked for shutdown-time Close
}

// New binds addr and returns a Listener with maxConnections permits.
func New(addr string, maxConnections int64, v *vault.Vault, version string, log *logrus.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, srverr.Resource("bind failed", err)
	}

	return &Listener{
		ln:      ln,
		sem:     semaphore.New(context.Background(), maxConnections),
		vault:   v,
		version: version,
		log:     log,
		conns:   atomicx.NewValue[int64](),
	}, nil
}

// Connections returns the number of currently connected handlers, for
// the /metrics connections gauge.
func (l *Listener) Connections() int64 {
	return l.conns.Load()
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Run accepts connections until ctx is canceled or a fatal accept error
// occurs (backoff exhausted past maxBackoffSeconds). It blocks until
// every spawned handler has returned.
//
// net.Conn has no select-friendly read: a handler blocked in ReadFrame
// is blocked in a plain conn.Read. Go makes closing a net.Conn from
// another goroutine safe and effective (the blocked Read returns an
// error immediately), so shutdown force-closes every tracked
// connection rather than threading ctx through the decoder itself —
// each serve goroutine's ReadFrame then fails, it returns, and its
// semaphore permit is released (spec §4.7/§5: handlers "return
// promptly when signaled" and drop their connection on shutdown).
func (l *Listener) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.sem.DeferMain()
		_ = l.ln.Close()
		l.closeLive()
	}()

	defer l.wg.Wait()

	backoff := time.Second
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if backoff > maxBackoffSeconds*time.Second {
				return srverr.ErrInvalidConnection
			}
			time.Sleep(backoff)
			backoff *= 2
			continue
		}
		backoff = time.Second

		l.handleAccepted(conn)
	}
}

// handleAccepted either rejects conn with a MaxConnectionsExceeded
// handshake frame (S4) or spawns a handler under one semaphore permit.
func (l *Listener) handleAccepted(conn net.Conn) {
	if !l.sem.NewWorkerTry() {
		c, err := NewConnection(conn)
		if err == nil {
			_ = c.WriteFailure(srverr.ErrMaxConnExceeded)
		}
		_ = conn.Close()
		return
	}

	l.live.Store(conn, struct{}{})

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.sem.DeferWorker()
		defer l.live.Delete(conn)
		l.serve(conn)
	}()
}

func (l *Listener) serve(conn net.Conn) {
	entry := l.connEntry(conn)

	l.incConnections()
	defer l.decConnections()

	c, err := NewConnection(conn)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer c.Close()

	if err := c.WriteHandshake(); err != nil {
		return
	}

	if entry != nil {
		entry.Debug("connection accepted")
		defer entry.Debug("connection closed")
	}

	exec := NewExecutor(l.vault.Clone(), l.version)

	for {
		cmd, err := c.ReadFrame()
		if err != nil {
			if entry != nil {
				entry.WithError(err).Debug("connection closed on frame error")
			}
			return
		}
		if cmd == nil {
			return
		}

		payload, srvErr := exec.Dispatch(cmd)
		if srvErr != nil {
			if err := c.WriteFailure(srvErr); err != nil {
				return
			}
			continue
		}
		if err := c.WriteSuccess(payload); err != nil {
			return
		}
	}
}

// Close stops accepting new connections immediately.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// connEntry builds this connection's log context: a conn_id (google/uuid)
// and remote address, carried through every log line the handler emits.
// Returns nil if the Listener was built without a logger.
func (l *Listener) connEntry(conn net.Conn) *logrus.Entry {
	if l.log == nil {
		return nil
	}

	return l.log.WithFields(logrus.Fields{
		"conn_id": uuid.NewString(),
		"remote":  conn.RemoteAddr().String(),
	})
}

// closeLive force-closes every connection currently inside serve,
// unblocking their ReadFrame calls so shutdown doesn't wait on idle
// clients.
func (l *Listener) closeLive() {
	l.live.Range(func(key, _ any) bool {
		_ = key.(net.Conn).Close()
		return true
	})
}

func (l *Listener) incConnections() {
	for {
		old := l.conns.Load()
		if l.conns.CompareAndSwap(old, old+1) {
			return
		}
	}
}

func (l *Listener) decConnections() {
	for {
		old := l.conns.Load()
		if l.conns.CompareAndSwap(old, old-1) {
			return
		}
	}
}
