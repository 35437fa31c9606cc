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

import "strings"

// Policy identifies an eviction discipline. Numeric values are fixed by
// spec §9 ("the spec fixes LFU=0, FIFO=1, LRU=2, MRU=3") and match the
// wire protocol's policy byte (spec §6.1) exactly.
type Policy uint8

const (
	PolicyLFU  Policy = 0
	PolicyFIFO Policy = 1
	PolicyLRU  Policy = 2
	PolicyMRU  Policy = 3
)

// ParsePolicy decodes a wire policy byte. ok is false for any value
// outside 0..=3 (spec §4.3: "anything else is a protocol error").
func ParsePolicy(b byte) (p Policy, ok bool) {
	switch Policy(b) {
	case PolicyLFU, PolicyFIFO, PolicyLRU, PolicyMRU:
		return Policy(b), true
	default:
		return 0, false
	}
}

// ParsePolicyName decodes a configuration-file policy name ("lfu",
// "fifo", "lru", "mru"; case-insensitive), per spec §6.4's policy and
// policies keys.
func ParsePolicyName(s string) (Policy, bool) {
	switch strings.ToLower(s) {
	case "lfu":
		return PolicyLFU, true
	case "fifo":
		return PolicyFIFO, true
	case "lru":
		return PolicyLRU, true
	case "mru":
		return PolicyMRU, true
	default:
		return 0, false
	}
}

// Byte returns the wire encoding of the policy.
func (p Policy) Byte() byte {
	return byte(p)
}

func (p Policy) String() string {
	switch p {
	case PolicyLFU:
		return "lfu"
	case PolicyFIFO:
		return "fifo"
	case PolicyLRU:
		return "lru"
	case PolicyMRU:
		return "mru"
	default:
		return "unknown"
	}
}
