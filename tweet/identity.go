package tweet

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/jacentio/tweetstore/internal/derive"
)

// KeyLength is the size of identities and addresses in bytes.
const KeyLength = 32

// Identity is an author's public key.
type Identity [KeyLength]byte

// Address is a storage location. Record addresses are derived, never assigned.
type Address [KeyLength]byte

// ParseIdentity decodes a base58 identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if err := decodeKey(s, id[:]); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	if err := decodeKey(s, addr[:]); err != nil {
		return Address{}, err
	}
	return addr, nil
}

func decodeKey(s string, dst []byte) error {
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(b) != KeyLength {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(b), KeyLength)
	}
	copy(dst, b)
	return nil
}

func (id Identity) String() string { return base58.Encode(id[:]) }

// IsZero reports whether the identity is all zero bytes.
func (id Identity) IsZero() bool { return id == Identity{} }

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (a Address) String() string { return base58.Encode(a[:]) }

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Key returns the hex partition key hosts store the address under.
func (a Address) Key() string { return derive.Key(a) }

// RecordAddress derives the single record address for author under programID.
// tag is the domain tag mixed into the derivation and must be at most 32 bytes.
func RecordAddress(programID Identity, tag string, author Identity) (Address, error) {
	addr, err := derive.Address(programID[:], []byte(tag), author[:])
	if err != nil {
		return Address{}, fmt.Errorf("derive record address: %w", err)
	}
	return Address(addr), nil
}
