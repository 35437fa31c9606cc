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

// Package wire implements PaperCache's bit-exact binary protocol (spec
// §6.1): the frame codec (Component B) and command parser (Component C).
//
// Every command is expressed as a single Command value carrying a Kind
// tag plus whichever fields that kind uses — a tagged union via a Kind
// field rather than per-command types with polymorphic dispatch (spec
// §9: "express them with a language-native sum type... avoid polymorphic
// command dispatch by method").
//
// Decoding follows the two-pass Check/Parse scheme of the Rust original
// (original_source/src/frame.rs): Check scans a cursor over the buffered
// bytes without consuming the underlying buffer, signalling Incomplete
// if any declared length would read past what has arrived so far; Parse
// then re-walks a fresh cursor from position zero to materialize the
// typed Command once Check confirms the frame is whole.
package wire

// Kind is the wire command byte (spec §6.1). Values are fixed by the
// table and must not be renumbered.
type Kind byte

const (
	KindPing    Kind = 0x00
	KindVersion Kind = 0x01
	KindAuth    Kind = 0x02
	KindGet     Kind = 0x03
	KindSet     Kind = 0x04
	KindDel     Kind = 0x05
	KindHas     Kind = 0x06
	KindPeek    Kind = 0x07
	KindTtl     Kind = 0x08
	KindSize    Kind = 0x09
	KindWipe    Kind = 0x0A
	KindResize  Kind = 0x0B
	KindPolicy  Kind = 0x0C
	KindStats   Kind = 0x0D
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindVersion:
		return "version"
	case KindAuth:
		return "auth"
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	case KindDel:
		return "del"
	case KindHas:
		return "has"
	case KindPeek:
		return "peek"
	case KindTtl:
		return "ttl"
	case KindSize:
		return "size"
	case KindWipe:
		return "wipe"
	case KindResize:
		return "resize"
	case KindPolicy:
		return "policy"
	case KindStats:
		return "stats"
	default:
		return "unknown"
	}
}

// Command is a decoded, typed client request. Only the fields relevant
// to Kind are populated; the rest are left at their zero value.
type Command struct {
	Kind Kind

	Key   []byte // Get, Set, Del, Has, Peek, Ttl, Size
	Value []byte // Set
	TTL   uint32 // Set, Ttl — 0 means "no expiry" (spec §3, "TTL")

	Token []byte // Auth

	ResizeBytes uint64 // Resize
	PolicyByte  byte   // Policy
}
