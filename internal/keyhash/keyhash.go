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

// Package keyhash supplies the single stable non-cryptographic hash used to
// turn client-supplied key and auth-token bytes into the 64-bit integers the
// cache engine and Vault operate on (spec §3, "Key": "the server hashes the
// key to a 64-bit integer using a stable non-cryptographic hash").
//
// Everything that needs this mapping — the command executor hashing a Get's
// key, the config loader hashing a configured auth token at startup, the
// executor hashing a client's Auth(token) for comparison — must go through
// Sum64 so the same bytes always produce the same 64-bit value for the
// lifetime of a server run.
package keyhash

import "github.com/cespare/xxhash/v2"

// Sum64 hashes b into a 64-bit integer.
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}
