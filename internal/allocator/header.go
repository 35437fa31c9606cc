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

package allocator

import "unsafe"

// makeDRAM allocates a headerSize-prefixed buffer from the Go heap and
// returns the user-visible slice past the header (spec §4.1 step 4).
func makeDRAM(n uint32) []byte {
	buf := make([]byte, int(headerSize)+int(n))
	buf[0] = byte(tierDRAM)
	return buf[headerSize:]
}

// tierOf recovers the tier tag from the header immediately preceding b by
// walking backwards from b's base pointer — the Go analogue of the
// pointer arithmetic a native allocator performs on free (spec §4.1:
// "deallocation reads the header immediately preceding the user pointer").
func tierOf(b []byte) tier {
	if len(b) == 0 {
		return tierDRAM
	}

	hdr := unsafe.Pointer(uintptr(unsafe.Pointer(&b[0])) - headerSize)
	return tier(*(*byte)(hdr))
}

// isDRAM reports whether b was allocated from the fast tier.
func isDRAM(b []byte) bool {
	return tierOf(b) == tierDRAM
}
