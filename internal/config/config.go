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

// Package config loads PaperCache's key=value configuration file (spec
// §6.4): host/port/max_size/policies/policy/max_connections/auth_token,
// with $NAME values resolved against the process environment.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/keyhash"
	"github.com/papercache/papercache/internal/size"
)

// Config is the fully decoded, validated server configuration.
type Config struct {
	Host string `validate:"required"`
	Port uint32 `validate:"required,lte=65535"`

	MaxSize size.Size `validate:"gt=0"`

	AllowedPolicy []cache.Policy `validate:"required,min=1"`
	InitialPolicy cache.Policy

	MaxConnections int64 `validate:"required,gt=0"`

	// AuthTokenHash is nil when no auth_token key was present.
	AuthTokenHash *uint64
}

var validate = validator.New()

// Load reads and validates the key=value file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a key=value config stream. $NAME values are resolved
// against the environment before the rest of parsing happens, then the
// resolved pairs are handed to viper (properties format) so type lookups
// go through one well-tested decoder.
func Parse(r io.Reader) (*Config, error) {
	resolved, policies, initialPolicy, hasInitialPolicy, authToken, err := scan(r)
	if err != nil {
		return nil, err
	}
	if !hasInitialPolicy {
		return nil, fmt.Errorf("config: missing required key %q", "policy")
	}

	v := viper.New()
	v.SetConfigType("properties")
	if err := v.ReadConfig(bytes.NewReader(resolved)); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{
		Host:           v.GetString("host"),
		AllowedPolicy:  policies,
		InitialPolicy:  initialPolicy,
		MaxConnections: v.GetInt64("max_connections"),
	}

	if port := v.GetString("port"); port != "" {
		p, err := strconv.ParseUint(port, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("config: invalid port %q: %w", port, err)
		}
		cfg.Port = uint32(p)
	}

	if raw := v.GetString("max_size"); raw != "" {
		sz, err := size.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("config: max_size: %w", err)
		}
		cfg.MaxSize = sz
	}

	if authToken != "" {
		h := keyhash.Sum64([]byte(authToken))
		cfg.AuthTokenHash = &h
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	found := false
	for _, p := range cfg.AllowedPolicy {
		if p == cfg.InitialPolicy {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("config: policy %q is not in the allowed policies set", cfg.InitialPolicy)
	}

	return cfg, nil
}

// scan splits the file into resolved key=value lines for viper, while
// pulling out the multi-value/enum keys (policies, policy, auth_token)
// that viper's flat properties decoder can't type on its own.
func scan(r io.Reader) (resolved []byte, policies []cache.Policy, initial cache.Policy, hasInitial bool, authToken string, err error) {
	var out bytes.Buffer
	sc := bufio.NewScanner(r)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, nil, 0, false, "", fmt.Errorf("config: malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		value = resolveEnv(strings.TrimSpace(value))

		switch key {
		case "policies", "policies[]":
			for _, tok := range strings.Split(value, "|") {
				p, ok := cache.ParsePolicyName(strings.TrimSpace(tok))
				if !ok {
					return nil, nil, 0, false, "", fmt.Errorf("config: unknown policy %q", tok)
				}
				policies = append(policies, p)
			}
		case "policy":
			p, ok := cache.ParsePolicyName(value)
			if !ok {
				return nil, nil, 0, false, "", fmt.Errorf("config: unknown policy %q", value)
			}
			initial = p
			hasInitial = true
		case "auth_token":
			authToken = value
		default:
			fmt.Fprintf(&out, "%s = %s\n", key, value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, 0, false, "", fmt.Errorf("config: %w", err)
	}

	return out.Bytes(), policies, initial, hasInitial, authToken, nil
}

// resolveEnv implements spec §6.4's "values beginning with $ are resolved
// via environment lookup" rule.
func resolveEnv(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}
	return os.Getenv(strings.TrimPrefix(value, "$"))
}
