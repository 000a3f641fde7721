package store

import (
	"context"
	"time"

	"github.com/jacentio/tweetstore/tweet"
)

// Account is a persisted, funded storage slot.
type Account struct {
	// Address is where the account lives.
	Address tweet.Address

	// Authority is the only identity allowed to close the account.
	// Closing refunds Lamports to it.
	Authority tweet.Identity

	// Lamports is the deposit held by the account.
	Lamports uint64

	// Data is the account payload.
	Data []byte
}

// Allocation describes a new account to create.
type Allocation struct {
	Address   tweet.Address
	Payer     tweet.Identity
	Authority tweet.Identity
	Lamports  uint64
	Data      []byte
}

// Host persists accounts. Each method is atomic: it either fully applies or
// has no effect. Implementations must serialize operations on the same address.
type Host interface {
	// Allocate debits a.Lamports from a.Payer and creates the account.
	// It returns ErrAccountInUse if the address is occupied and
	// ErrInsufficientFunds if the payer cannot cover the deposit.
	Allocate(ctx context.Context, a Allocation) error

	// Close removes the account at addr and credits its lamports to authority.
	// It returns ErrAccountNotFound if nothing is stored at addr and
	// ErrOwnerMismatch if the stored authority differs.
	Close(ctx context.Context, addr tweet.Address, authority tweet.Identity) (uint64, error)

	// Load returns the account at addr or ErrAccountNotFound.
	Load(ctx context.Context, addr tweet.Address) (*Account, error)
}

// Clock is the trusted time source for creation timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(time.Now)
