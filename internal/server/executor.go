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

package server

import (
	"errors"
	"time"

	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/duration"
	"github.com/papercache/papercache/internal/keyhash"
	"github.com/papercache/papercache/internal/srverr"
	"github.com/papercache/papercache/internal/vault"
	"github.com/papercache/papercache/internal/wire"
)

// Executor dispatches one connection's decoded commands against its
// Vault (spec §4.6, Component F). Ping, Version and Auth are available
// in any auth state; every other command requires an unlocked Vault
// (Invariant I2, Property 5).
type Executor struct {
	vault   *vault.Vault
	version string
}

// NewExecutor builds an Executor over a per-connection Vault clone.
func NewExecutor(v *vault.Vault, version string) *Executor {
	return &Executor{vault: v, version: version}
}

// Dispatch runs cmd and returns the response payload to follow a
// success byte, or a *srverr.Error to report as a failure frame instead.
// Exactly one of the two return values is non-nil/non-empty-meaningful
// per call (spec §7: "the executor never panics on a client-visible
// error; the dispatch result is always serialized").
func (e *Executor) Dispatch(cmd *wire.Command) ([]byte, *srverr.Error) {
	switch cmd.Kind {
	case wire.KindPing:
		return wire.EncodeBuf([]byte("pong")), nil

	case wire.KindVersion:
		return wire.EncodeBuf([]byte(e.version)), nil

	case wire.KindAuth:
		return nil, e.dispatchAuth(cmd)

	default:
		facade, verr := e.vault.Cache()
		if verr != nil {
			return nil, asServerError(verr)
		}
		return e.dispatchData(cmd, facade)
	}
}

func (e *Executor) dispatchAuth(cmd *wire.Command) *srverr.Error {
	if !e.vault.RequiresAuth() {
		return nil
	}

	token := keyhash.Sum64(cmd.Token)
	if err := e.vault.TryUnlock(token); err != nil {
		return asServerError(err)
	}
	return nil
}

func (e *Executor) dispatchData(cmd *wire.Command, facade *cache.Facade) ([]byte, *srverr.Error) {
	switch cmd.Kind {
	case wire.KindGet:
		value, err := facade.Get(keyhash.Sum64(cmd.Key))
		if err != nil {
			return nil, asServerError(err)
		}
		return wire.EncodeBuf(value), nil

	case wire.KindSet:
		err := facade.Set(keyhash.Sum64(cmd.Key), cmd.Value, ttlFromWire(cmd.TTL))
		if err != nil {
			return nil, asServerError(err)
		}
		return nil, nil

	case wire.KindDel:
		if err := facade.Del(keyhash.Sum64(cmd.Key)); err != nil {
			return nil, asServerError(err)
		}
		return nil, nil

	case wire.KindHas:
		has := facade.Has(keyhash.Sum64(cmd.Key))
		return wire.EncodeU8(boolToU8(has)), nil

	case wire.KindPeek:
		value, err := facade.Peek(keyhash.Sum64(cmd.Key))
		if err != nil {
			return nil, asServerError(err)
		}
		return wire.EncodeBuf(value), nil

	case wire.KindTtl:
		if err := facade.SetTTL(keyhash.Sum64(cmd.Key), ttlFromWire(cmd.TTL)); err != nil {
			return nil, asServerError(err)
		}
		return nil, nil

	case wire.KindSize:
		n, err := facade.Size(keyhash.Sum64(cmd.Key))
		if err != nil {
			return nil, asServerError(err)
		}
		return wire.EncodeU32(n), nil

	case wire.KindWipe:
		facade.Wipe()
		return nil, nil

	case wire.KindResize:
		if err := facade.Resize(cmd.ResizeBytes); err != nil {
			return nil, asServerError(err)
		}
		return nil, nil

	case wire.KindPolicy:
		policy, ok := cache.ParsePolicy(cmd.PolicyByte)
		if !ok {
			return nil, srverr.ErrInvalidPolicy
		}
		if err := facade.SetPolicy(policy); err != nil {
			return nil, asServerError(err)
		}
		return nil, nil

	case wire.KindStats:
		return encodeStats(facade.Stats()), nil

	default:
		return nil, srverr.Protocol("unsupported command", nil)
	}
}

func encodeStats(s cache.Stats) []byte {
	out := make([]byte, 0, 8*6+1+8)
	out = append(out, wire.EncodeU64(s.MaxSize)...)
	out = append(out, wire.EncodeU64(s.UsedSize)...)
	out = append(out, wire.EncodeU64(s.TotalGets)...)
	out = append(out, wire.EncodeU64(s.TotalSets)...)
	out = append(out, wire.EncodeU64(s.TotalDels)...)
	out = append(out, wire.EncodeF64(s.MissRatio)...)
	out = append(out, wire.EncodeU8(s.Policy.Byte())...)
	out = append(out, wire.EncodeU64(s.UptimeSecs)...)
	return out
}

// ttlFromWire converts the wire's unsigned 32-bit seconds TTL (0 means
// no expiry) to the *time.Duration the engine's Set/SetTTL expect, via
// duration.Seconds rather than a raw multiply.
func ttlFromWire(seconds uint32) *time.Duration {
	if seconds == 0 {
		return nil
	}
	d := duration.Seconds(int64(seconds)).Time()
	return &d
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// asServerError adapts a cache/vault error into the *srverr.Error the
// response framer needs, for the rare case a collaborator returns a
// plain error instead of one built via the srverr constructors.
func asServerError(err error) *srverr.Error {
	if err == nil {
		return nil
	}
	var se *srverr.Error
	if errors.As(err, &se) {
		return se
	}
	return srverr.New(srverr.CategoryProtocol, "internal error", err)
}
