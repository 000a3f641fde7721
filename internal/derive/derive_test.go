package derive

import (
	"bytes"
	"strings"
	"testing"
)

var programID = bytes.Repeat([]byte{7}, 32)

func TestAddress_Deterministic(t *testing.T) {
	author := bytes.Repeat([]byte{1}, 32)

	first, err := Address(programID, []byte("record"), author)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		result, err := Address(programID, []byte("record"), author)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != first {
			t.Errorf("expected deterministic result %x, got %x on iteration %d", first, result, i)
		}
	}
}

func TestAddress_Uniqueness(t *testing.T) {
	seen := make(map[[32]byte]string)

	inputs := []struct {
		name    string
		program []byte
		seeds   [][]byte
	}{
		{"author a", programID, [][]byte{[]byte("record"), bytes.Repeat([]byte{1}, 32)}},
		{"author b", programID, [][]byte{[]byte("record"), bytes.Repeat([]byte{2}, 32)}},
		{"other tag", programID, [][]byte{[]byte("tweet"), bytes.Repeat([]byte{1}, 32)}},
		{"other program", bytes.Repeat([]byte{8}, 32), [][]byte{[]byte("record"), bytes.Repeat([]byte{1}, 32)}},
		{"no seeds", programID, nil},
	}

	for _, input := range inputs {
		addr, err := Address(input.program, input.seeds...)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input.name, err)
		}
		if existing, ok := seen[addr]; ok {
			t.Errorf("collision: %q and %q both produce %x", existing, input.name, addr)
		}
		seen[addr] = input.name
	}
}

func TestAddress_SeedLimits(t *testing.T) {
	tests := []struct {
		name    string
		seeds   [][]byte
		wantErr error
	}{
		{"max length seed", [][]byte{bytes.Repeat([]byte{1}, MaxSeedLength)}, nil},
		{"seed too long", [][]byte{bytes.Repeat([]byte{1}, MaxSeedLength+1)}, ErrSeedTooLong},
		{"max seeds", make([][]byte, MaxSeeds), nil},
		{"too many seeds", make([][]byte, MaxSeeds+1), ErrTooManySeeds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Address(programID, tt.seeds...)
			if err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestKey_HexFormat(t *testing.T) {
	addr, err := Address(programID, []byte("record"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := Key(addr)
	if len(key) != 64 {
		t.Errorf("expected 64 characters, got %d: %q", len(key), key)
	}
	if key != strings.ToLower(key) {
		t.Errorf("expected lowercase hex, got %q", key)
	}
	for _, c := range key {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("expected hex character, got %c", c)
		}
	}
}

func BenchmarkAddress(b *testing.B) {
	author := bytes.Repeat([]byte{1}, 32)
	tag := []byte("record")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Address(programID, tag, author)
	}
}
