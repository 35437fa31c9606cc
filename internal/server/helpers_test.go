package server_test

import (
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/allocator"
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/engine"
	"github.com/papercache/papercache/internal/vault"
)

func newTestVault(authToken *uint64) *vault.Vault {
	alloc := allocator.New(8<<20, "", 0)
	eng, err := engine.New(engine.Config{
		MaxSize:       1 << 16,
		AllowedPolicy: []cache.Policy{cache.PolicyLRU},
		InitialPolicy: cache.PolicyLRU,
		Version:       "papercache-test",
		Alloc:         alloc,
	})
	Expect(err).ToNot(HaveOccurred())
	return vault.New(cache.NewFacade(eng), authToken)
}
