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

// Package duration holds PaperCache's TTL type: the wire protocol carries
// a TTL as an unsigned 32-bit seconds-from-now value (0 meaning "no
// expiry"), while the reference engine's Set/SetTTL operate on
// *time.Duration. Duration is the conversion point between the two.
package duration

import "time"

// Duration wraps time.Duration so callers can't accidentally pass a
// raw nanosecond count where a TTL (always whole seconds on the wire)
// is expected.
type Duration time.Duration

// Seconds builds a Duration representing n whole seconds.
func Seconds(n int64) Duration {
	return Duration(time.Duration(n) * time.Second)
}

// Time returns d as a standard time.Duration.
func (d Duration) Time() time.Duration {
	return time.Duration(d)
}
