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

package wire

import (
	"encoding/binary"
	"errors"

	"github.com/papercache/papercache/internal/srverr"
)

// ErrIncomplete signals that a frame's declared length reaches past the
// bytes read so far; it is never client-visible (spec §4.2: "the caller
// must read more bytes and retry").
var ErrIncomplete = errors.New("wire: incomplete frame")

// cursor is a read-only view over a byte slice, advanced by each get*
// call, mirroring the Cursor<&[u8]> helpers in frame.rs.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) getU8() (byte, error) {
	if c.remaining() < 1 {
		return 0, ErrIncomplete
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) getU32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, ErrIncomplete
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *cursor) getU64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, ErrIncomplete
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

func (c *cursor) getBytes() ([]byte, error) {
	n, err := c.getU32()
	if err != nil {
		return nil, err
	}
	if c.remaining() < int(n) {
		return nil, ErrIncomplete
	}
	b := make([]byte, n)
	copy(b, c.buf[c.pos:c.pos+int(n)])
	c.pos += int(n)
	return b, nil
}

func (c *cursor) skipBytes() error {
	n, err := c.getU32()
	if err != nil {
		return err
	}
	if c.remaining() < int(n) {
		return ErrIncomplete
	}
	c.pos += int(n)
	return nil
}

// Check scans buf for one complete command frame without allocating or
// consuming it, returning ErrIncomplete if buf does not yet hold a whole
// frame, or a protocol error for an unrecognized command byte (spec
// §4.2: "A command byte outside the defined set is a fatal protocol
// error for the connection").
func Check(buf []byte) error {
	c := &cursor{buf: buf}

	kb, err := c.getU8()
	if err != nil {
		return err
	}

	switch Kind(kb) {
	case KindPing, KindVersion, KindWipe, KindStats:
		return nil
	case KindAuth, KindGet, KindDel, KindHas, KindPeek, KindSize:
		return c.skipBytes()
	case KindSet:
		if err = c.skipBytes(); err != nil {
			return err
		}
		if err = c.skipBytes(); err != nil {
			return err
		}
		_, err = c.getU32()
		return err
	case KindTtl:
		if err = c.skipBytes(); err != nil {
			return err
		}
		_, err = c.getU32()
		return err
	case KindResize:
		_, err = c.getU64()
		return err
	case KindPolicy:
		tag, err := c.getU8()
		if err != nil {
			return err
		}
		if tag > 3 {
			return srverr.Protocol("policy byte out of range", nil)
		}
		return nil
	default:
		return srverr.Protocol("unknown command byte", nil)
	}
}

// Parse materializes a typed Command from buf, assuming Check has already
// proved buf holds a complete frame. It returns the command and the
// number of bytes consumed from buf.
func Parse(buf []byte) (*Command, int, error) {
	c := &cursor{buf: buf}

	kb, err := c.getU8()
	if err != nil {
		return nil, 0, err
	}

	cmd := &Command{Kind: Kind(kb)}

	switch cmd.Kind {
	case KindPing, KindVersion, KindWipe, KindStats:
		// no body

	case KindAuth:
		if cmd.Token, err = c.getBytes(); err != nil {
			return nil, 0, err
		}

	case KindGet, KindDel, KindHas, KindPeek, KindSize:
		if cmd.Key, err = c.getBytes(); err != nil {
			return nil, 0, err
		}

	case KindSet:
		if cmd.Key, err = c.getBytes(); err != nil {
			return nil, 0, err
		}
		if cmd.Value, err = c.getBytes(); err != nil {
			return nil, 0, err
		}
		if cmd.TTL, err = c.getU32(); err != nil {
			return nil, 0, err
		}

	case KindTtl:
		if cmd.Key, err = c.getBytes(); err != nil {
			return nil, 0, err
		}
		if cmd.TTL, err = c.getU32(); err != nil {
			return nil, 0, err
		}

	case KindResize:
		if cmd.ResizeBytes, err = c.getU64(); err != nil {
			return nil, 0, err
		}

	case KindPolicy:
		if cmd.PolicyByte, err = c.getU8(); err != nil {
			return nil, 0, err
		}

	default:
		return nil, 0, srverr.Protocol("unknown command byte", nil)
	}

	return cmd, c.pos, nil
}
