package repo

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// StaticWhitelist is an in-memory save.Whitelist backed by a fixed address
// set, loaded once at startup from config.
type StaticWhitelist struct {
	mu        sync.RWMutex
	addresses map[common.Address]bool
}

// NewStaticWhitelist builds a StaticWhitelist from a set of addresses.
func NewStaticWhitelist(addresses []common.Address) *StaticWhitelist {
	w := &StaticWhitelist{addresses: make(map[common.Address]bool, len(addresses))}
	for _, a := range addresses {
		w.addresses[a] = true
	}
	return w
}

func (w *StaticWhitelist) IsWhitelisted(_ context.Context, address common.Address) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.addresses[address]
}

// Add whitelists address, for operator tooling that updates the list without
// a process restart.
func (w *StaticWhitelist) Add(address common.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addresses[address] = true
}
