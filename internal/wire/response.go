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
	"bufio"
	"encoding/binary"
	"math"

	"github.com/papercache/papercache/internal/srverr"
)

// StatusSuccess and StatusFailure are the two possible first bytes of
// every response frame (spec §3, "Response frame").
const (
	StatusSuccess byte = 0x21 // '!'
	StatusFailure byte = 0x3F // '?'
)

// WriteSuccess writes a success status byte followed by payload, which
// the caller has already encoded in wire order for the dispatched
// command (spec §6.1).
func WriteSuccess(w *bufio.Writer, payload []byte) error {
	if err := w.WriteByte(StatusSuccess); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteFailure writes a failure frame for err: status byte, category
// byte, and — only for CategoryCacheEngine — a subcode byte (spec §6.1,
// §7).
func WriteFailure(w *bufio.Writer, err *srverr.Error) error {
	if wErr := w.WriteByte(StatusFailure); wErr != nil {
		return wErr
	}
	if wErr := w.WriteByte(byte(err.Category())); wErr != nil {
		return wErr
	}
	if err.Category() == srverr.CategoryCacheEngine {
		if wErr := w.WriteByte(byte(err.Subcode())); wErr != nil {
			return wErr
		}
	}
	return w.Flush()
}

// WriteHandshake writes the single-byte success handshake frame emitted
// immediately after accept (spec §4.7, Invariant I5).
func WriteHandshake(w *bufio.Writer) error {
	if err := w.WriteByte(StatusSuccess); err != nil {
		return err
	}
	return w.Flush()
}

// EncodeBuf returns the wire encoding of a length-prefixed buffer:
// u32(len) || bytes.
func EncodeBuf(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}

// EncodeU8 returns the one-byte wire encoding of v.
func EncodeU8(v uint8) []byte {
	return []byte{v}
}

// EncodeU32 returns the little-endian wire encoding of v.
func EncodeU32(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

// EncodeU64 returns the little-endian wire encoding of v.
func EncodeU64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

// EncodeF64 returns the little-endian wire encoding of v.
func EncodeF64(v float64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, math.Float64bits(v))
	return out
}
