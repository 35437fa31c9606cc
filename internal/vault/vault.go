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

// Package vault holds the server-wide cache reference and optional
// auth-token hash, and the per-connection lock state derived from them
// (spec §3, "Vault"; §4.6, Property 5).
//
// A Vault is locked iff an auth-token hash is configured and the owning
// connection has not yet unlocked it. Every handler gets its own Clone,
// so the lock state never leaks across connections, while the shared
// cache reference and token hash are immutable for the server's lifetime.
package vault

import (
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/srverr"
)

// Vault is a per-connection view onto the shared cache, gated by an
// optional auth-token hash.
type Vault struct {
	facade    *cache.Facade
	authToken *uint64
	locked    bool
}

// New builds a Vault for the server's cache facade and an optional
// configured auth-token hash (nil means the server requires no auth, so
// every connection starts unlocked).
func New(facade *cache.Facade, authToken *uint64) *Vault {
	return &Vault{
		facade:    facade,
		authToken: authToken,
		locked:    authToken != nil,
	}
}

// Clone returns a fresh, independently-lockable Vault for a new
// connection, sharing this Vault's cache facade and configured token.
func (v *Vault) Clone() *Vault {
	return New(v.facade, v.authToken)
}

// Locked reports whether this connection's Vault is currently locked.
func (v *Vault) Locked() bool {
	return v.locked
}

// RequiresAuth reports whether the server has an auth token configured
// at all, regardless of this connection's current lock state.
func (v *Vault) RequiresAuth() bool {
	return v.authToken != nil
}

// Cache returns the shared cache facade, or ErrUnauthorized while this
// connection's Vault is locked.
func (v *Vault) Cache() (*cache.Facade, error) {
	if v.locked {
		return nil, srverr.ErrUnauthorized
	}
	return v.facade, nil
}

// TryUnlock attempts to unlock this connection's Vault with token, the
// already-hashed value the client supplied via Auth(token). It is a
// no-op success if the Vault is already unlocked (Auth is idempotent
// once satisfied, spec §4.6).
func (v *Vault) TryUnlock(token uint64) error {
	if !v.locked {
		return nil
	}

	if v.authToken != nil && *v.authToken != token {
		return srverr.ErrUnauthorized
	}

	v.locked = false
	return nil
}
