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

// Package srverr defines PaperCache's closed error taxonomy and its mapping
// onto the wire protocol's failure frame (spec §6.1, §7).
//
// Every client-visible failure carries a Category (matching the wire's
// category byte exactly) and, for cache-engine errors, a Subcode. The type
// is deliberately smaller than a general-purpose error library: the
// taxonomy is closed and fully enumerated by the protocol table, so there
// is no need for a parent chain, a registry of message functions, or a
// pool of pre-allocated instances.
package srverr

import (
	"errors"
	"fmt"
	"runtime"
)

// Category identifies which of the four wire failure categories an Error
// belongs to. The numeric values match the wire protocol's category byte
// (spec §6.1) exactly and must not be renumbered.
type Category uint8

const (
	// CategoryCacheEngine covers KeyNotFound, ZeroValueSize,
	// ExceedingValueSize, ZeroCacheSize, UnconfiguredPolicy, InvalidPolicy.
	// The wire frame carries a Subcode alongside this category.
	CategoryCacheEngine Category = 0

	// CategoryProtocol covers malformed frames, unknown command bytes, and
	// unexpected EOF mid-frame. The connection is closed after this error.
	CategoryProtocol Category = 1

	// CategoryResource covers max-connections-exceeded and bind failures.
	CategoryResource Category = 2

	// CategoryUnauthorized is returned for any data command on a locked
	// Vault. The connection stays open.
	CategoryUnauthorized Category = 3
)

// String renders the category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryCacheEngine:
		return "cache-engine"
	case CategoryProtocol:
		return "protocol"
	case CategoryResource:
		return "resource"
	case CategoryUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Subcode further qualifies a CategoryCacheEngine error. Values match the
// wire protocol's cache-engine subcode table (spec §6.1) exactly.
type Subcode uint8

const (
	SubcodeNone               Subcode = 0
	SubcodeKeyNotFound        Subcode = 1
	SubcodeZeroValueSize      Subcode = 2
	SubcodeExceedingValueSize Subcode = 3
	SubcodeZeroCacheSize      Subcode = 4
	SubcodeUnconfiguredPolicy Subcode = 5
	SubcodeInvalidPolicy      Subcode = 6
)

func (s Subcode) String() string {
	switch s {
	case SubcodeKeyNotFound:
		return "key not found"
	case SubcodeZeroValueSize:
		return "zero value size"
	case SubcodeExceedingValueSize:
		return "exceeding value size"
	case SubcodeZeroCacheSize:
		return "zero cache size"
	case SubcodeUnconfiguredPolicy:
		return "unconfigured policy"
	case SubcodeInvalidPolicy:
		return "invalid policy"
	default:
		return "internal"
	}
}

var pattern = "papercache: %s: %s"

// Error is PaperCache's closed error type. It always carries a Category;
// Subcode is only meaningful when Category is CategoryCacheEngine.
type Error struct {
	cat   Category
	sub   Subcode
	msg   string
	cause error
	frame runtime.Frame
}

// New builds an Error with the given category, message and optional wrapped
// cause, capturing the caller's runtime frame for diagnostics.
func New(cat Category, msg string, cause error) *Error {
	return newError(cat, SubcodeNone, msg, cause, 2)
}

// NewCacheEngine builds a CategoryCacheEngine Error with the given subcode.
func NewCacheEngine(sub Subcode, cause error) *Error {
	return newError(CategoryCacheEngine, sub, sub.String(), cause, 2)
}

func newError(cat Category, sub Subcode, msg string, cause error, skip int) *Error {
	var fr runtime.Frame

	if pc, file, line, ok := runtime.Caller(skip); ok {
		fr = runtime.Frame{PC: pc, File: file, Line: line}
		if f := runtime.FuncForPC(pc); f != nil {
			fr.Function = f.Name()
		}
	}

	return &Error{cat: cat, sub: sub, msg: msg, cause: cause, frame: fr}
}

// Category returns the wire category byte for this error.
func (e *Error) Category() Category {
	if e == nil {
		return CategoryProtocol
	}
	return e.cat
}

// Subcode returns the cache-engine subcode, meaningful only when Category
// is CategoryCacheEngine.
func (e *Error) Subcode() Subcode {
	if e == nil {
		return SubcodeNone
	}
	return e.sub
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf(pattern, e.cat, e.msg) + ": " + e.cause.Error()
	}

	return fmt.Sprintf(pattern, e.cat, e.msg)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Trace returns the file:line of the call site that constructed the error.
func (e *Error) Trace() string {
	if e == nil || e.frame.PC == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.frame.File, e.frame.Line)
}

// Is reports whether target is an *Error with the same category and
// subcode, so callers can do errors.Is(err, srverr.ErrKeyNotFound).
func (e *Error) Is(target error) bool {
	var o *Error
	if !errors.As(target, &o) {
		return false
	}
	return e.cat == o.cat && e.sub == o.sub
}

// Predefined sentinels for errors.Is comparisons against cache-engine
// subcodes (e.g. errors.Is(err, srverr.ErrKeyNotFound)).
var (
	ErrKeyNotFound        = NewCacheEngine(SubcodeKeyNotFound, nil)
	ErrZeroValueSize      = NewCacheEngine(SubcodeZeroValueSize, nil)
	ErrExceedingValueSize = NewCacheEngine(SubcodeExceedingValueSize, nil)
	ErrZeroCacheSize      = NewCacheEngine(SubcodeZeroCacheSize, nil)
	ErrUnconfiguredPolicy = NewCacheEngine(SubcodeUnconfiguredPolicy, nil)
	ErrInvalidPolicy      = NewCacheEngine(SubcodeInvalidPolicy, nil)

	ErrUnauthorized      = New(CategoryUnauthorized, "unauthorized", nil)
	ErrMaxConnExceeded   = New(CategoryResource, "max connections exceeded", nil)
	ErrInvalidConnection = New(CategoryResource, "invalid connection", nil)
)

// Protocol wraps a framing/parsing failure under CategoryProtocol.
func Protocol(msg string, cause error) *Error {
	return newError(CategoryProtocol, SubcodeNone, msg, cause, 2)
}

// Resource wraps a bind/listen/accept failure under CategoryResource.
func Resource(msg string, cause error) *Error {
	return newError(CategoryResource, SubcodeNone, msg, cause, 2)
}
