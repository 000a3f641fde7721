// Package store implements the tweet record store: one short text record per
// author, created once and deleted only by its author.
//
// The store is a thin validation layer over a [Host], which owns persisted
// state. Hosts allocate accounts exactly once per address, fund them from a
// payer, and refund them on close. The store never caches a record between
// calls; every read goes to the host.
//
// # Operations
//
// [Store.CreateRecord] validates content, stamps it with the injected
// [Clock], encodes the fixed-size record and asks the host to allocate it.
// [Store.DeleteRecord] verifies the caller is the stored author and asks the
// host to close the account, returning its funds to the caller.
//
// Both operations take the record address explicitly and reject any address
// that is not the one derived from the caller's identity. [Store.Send] and
// [Store.Delete] derive it for you:
//
//	s := store.New(host, store.SystemClock, store.DefaultConfig())
//	if err := s.Send(ctx, author, "hello"); err != nil {
//	    // errors.Is(err, tweet.ErrContentTooLong), store.ErrAccountInUse, ...
//	}
//
// # Errors
//
// Validation failures come from package tweet ([tweet.ErrContentTooLong]).
// Host-level failures are generic:
//
//   - [ErrAccountInUse] - a record already exists at the address
//   - [ErrAccountNotFound] - no record exists at the address
//   - [ErrOwnerMismatch] - the stored author is not the caller
//   - [ErrSeedsMismatch] - the address is not derived from the caller
//   - [ErrInsufficientFunds] - the payer cannot fund the allocation
package store
