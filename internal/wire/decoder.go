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

// initialBufCap is the read buffer's starting capacity (spec §3,
// "Connection state": "read buffer (growable, initial capacity 4 KiB)").
const initialBufCap = 4 << 10

// Decoder holds the growable read buffer for one connection and turns
// raw bytes into typed Commands using the Check/Parse two-pass scheme
// (spec §4.2).
type Decoder struct {
	buf []byte
}

// NewDecoder returns a Decoder with the spec's initial buffer capacity.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, initialBufCap)}
}

// Feed appends newly read bytes to the decode buffer.
func (d *Decoder) Feed(b []byte) {
	d.buf = append(d.buf, b...)
}

// TryDecode attempts to decode one Command from the buffered bytes. It
// returns (cmd, true, nil) on success, consuming the frame from the
// buffer; (nil, false, nil) if more bytes are needed (ErrIncomplete);
// or (nil, false, err) for any other (protocol) error, which is fatal
// for the connection (spec §4.2).
func (d *Decoder) TryDecode() (*Command, bool, error) {
	if err := Check(d.buf); err != nil {
		if err == ErrIncomplete {
			return nil, false, nil
		}
		return nil, false, err
	}

	cmd, n, err := Parse(d.buf)
	if err != nil {
		return nil, false, err
	}

	d.buf = d.buf[n:]
	return cmd, true, nil
}

// Empty reports whether the decode buffer currently holds no bytes — used
// to distinguish a clean EOF (spec §4.4: "returns None on clean EOF with
// an empty buffer") from an EOF mid-frame.
func (d *Decoder) Empty() bool {
	return len(d.buf) == 0
}
