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

// Package server wires the per-connection command loop (spec §4.4,
// §4.6): Connection owns one socket's buffered I/O, Executor dispatches
// parsed commands against a Vault, and Listener bounds concurrency and
// runs the accept loop.
package server

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/wire"
)

const readChunkSize = 4 << 10

// Connection owns one accepted socket: its buffered writer and growable
// read/decode buffer (spec §4.4, Component D).
type Connection struct {
	conn    net.Conn
	w       *bufio.Writer
	dec     *wire.Decoder
	readBuf []byte
}

// NewConnection wraps conn, enabling TCP_NODELAY when conn is a TCP
// socket (spec §4.4: "Owns one accepted TCP socket with TCP_NODELAY
// enabled").
func NewConnection(conn net.Conn) (*Connection, error) {
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			return nil, srverr.Resource("set nodelay", err)
		}
	}

	return &Connection{
		conn:    conn,
		w:       bufio.NewWriter(conn),
		dec:     wire.NewDecoder(),
		readBuf: make([]byte, readChunkSize),
	}, nil
}

// ReadFrame returns the next decoded Command, reading more bytes from
// the socket as needed. It returns (nil, nil) on a clean EOF with no
// partial frame buffered, matching read_frame's "None on clean EOF"
// contract (spec §4.4).
func (c *Connection) ReadFrame() (*wire.Command, error) {
	for {
		cmd, ok, err := c.dec.TryDecode()
		if err != nil {
			return nil, err
		}
		if ok {
			return cmd, nil
		}

		n, err := c.conn.Read(c.readBuf)
		if n > 0 {
			c.dec.Feed(c.readBuf[:n])
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if c.dec.Empty() {
					return nil, nil
				}
				return nil, srverr.ErrInvalidConnection
			}
			return nil, srverr.Protocol("connection read failed", err)
		}
	}
}

// WriteSuccess writes a success frame with the given payload.
func (c *Connection) WriteSuccess(payload []byte) error {
	return wire.WriteSuccess(c.w, payload)
}

// WriteFailure writes a failure frame for srvErr.
func (c *Connection) WriteFailure(srvErr *srverr.Error) error {
	return wire.WriteFailure(c.w, srvErr)
}

// WriteHandshake writes the single-byte handshake success frame.
func (c *Connection) WriteHandshake() error {
	return wire.WriteHandshake(c.w)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}
