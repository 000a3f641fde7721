// Package derive computes deterministic storage addresses from seeds.
package derive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

const (
	// MaxSeeds is the maximum number of seeds accepted by Address.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed in bytes.
	MaxSeedLength = 32

	marker = "ProgramDerivedAddress"
)

var (
	// ErrTooManySeeds is returned when more than MaxSeeds seeds are supplied.
	ErrTooManySeeds = errors.New("derive: too many seeds")

	// ErrSeedTooLong is returned when a seed exceeds MaxSeedLength bytes.
	ErrSeedTooLong = errors.New("derive: seed too long")
)

// Address hashes the seeds, the owning program id and a fixed marker into a
// 32-byte address. The same inputs always produce the same address.
func Address(programID []byte, seeds ...[]byte) ([32]byte, error) {
	if len(seeds) > MaxSeeds {
		return [32]byte{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return [32]byte{}, ErrSeedTooLong
		}
		h.Write(seed)
	}
	h.Write(programID)
	h.Write([]byte(marker))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Key renders an address as the lowercase hex partition key used by hosts.
func Key(addr [32]byte) string {
	return hex.EncodeToString(addr[:])
}
