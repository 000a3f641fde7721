// Package memory provides an in-process Host for the tweet record store.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/jacentio/tweetstore/store"
	"github.com/jacentio/tweetstore/tweet"
)

// Host keeps accounts and balances in maps guarded by one mutex, which
// serializes every operation.
type Host struct {
	mu       sync.Mutex
	accounts map[tweet.Address]store.Account
	balances map[tweet.Identity]uint64
}

// New creates an empty Host.
func New() *Host {
	return &Host{
		accounts: make(map[tweet.Address]store.Account),
		balances: make(map[tweet.Identity]uint64),
	}
}

// Airdrop credits lamports to id.
func (h *Host) Airdrop(id tweet.Identity, lamports uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.balances[id] += lamports
}

// Balance returns the lamports held by id.
func (h *Host) Balance(id tweet.Identity) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balances[id]
}

// Len returns the number of live accounts.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.accounts)
}

// Allocate implements store.Host.
func (h *Host) Allocate(ctx context.Context, a store.Allocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.accounts[a.Address]; exists {
		return store.ErrAccountInUse
	}
	if h.balances[a.Payer] < a.Lamports {
		return store.ErrInsufficientFunds
	}

	h.balances[a.Payer] -= a.Lamports
	h.accounts[a.Address] = store.Account{
		Address:   a.Address,
		Authority: a.Authority,
		Lamports:  a.Lamports,
		Data:      bytes.Clone(a.Data),
	}
	return nil
}

// Close implements store.Host.
func (h *Host) Close(ctx context.Context, addr tweet.Address, authority tweet.Identity) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	acct, ok := h.accounts[addr]
	if !ok {
		return 0, store.ErrAccountNotFound
	}
	if acct.Authority != authority {
		return 0, store.ErrOwnerMismatch
	}

	delete(h.accounts, addr)
	h.balances[authority] += acct.Lamports
	return acct.Lamports, nil
}

// Load implements store.Host.
func (h *Host) Load(ctx context.Context, addr tweet.Address) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	acct, ok := h.accounts[addr]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	acct.Data = bytes.Clone(acct.Data)
	return &acct, nil
}
