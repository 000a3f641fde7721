package store

import "errors"

var (
	// ErrAccountInUse is returned when allocating an address that is already occupied.
	ErrAccountInUse = errors.New("tweetstore: account already in use")

	// ErrAccountNotFound is returned when no account exists at the address.
	ErrAccountNotFound = errors.New("tweetstore: account not found")

	// ErrOwnerMismatch is returned when the stored author is not the caller.
	ErrOwnerMismatch = errors.New("tweetstore: caller is not the record author")

	// ErrSeedsMismatch is returned when the supplied address is not derived from the caller.
	ErrSeedsMismatch = errors.New("tweetstore: address is not derived from caller")

	// ErrInsufficientFunds is returned when the payer cannot fund an allocation.
	ErrInsufficientFunds = errors.New("tweetstore: insufficient funds")
)
