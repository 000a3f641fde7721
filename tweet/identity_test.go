package tweet_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/tweetstore/tweet"
)

func TestIdentity_StringRoundTrip(t *testing.T) {
	id := tweet.Identity(bytes.Repeat([]byte{0x42}, 32))

	parsed, err := tweet.ParseIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestIdentity_KnownEncoding(t *testing.T) {
	// The all-zero key is 32 leading-zero bytes, one '1' each in base58.
	var zero tweet.Identity
	assert.Equal(t, "11111111111111111111111111111111", zero.String())
	assert.True(t, zero.IsZero())
}

func TestParseIdentity_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad alphabet", "0OIl"},
		{"too short", "3mJr7AoUXx2Wqd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tweet.ParseIdentity(tt.input)
			assert.ErrorIs(t, err, tweet.ErrInvalidKey)
		})
	}
}

func TestIdentity_JSON(t *testing.T) {
	id := tweet.Identity(bytes.Repeat([]byte{9}, 32))

	data, err := json.Marshal(map[string]tweet.Identity{"author": id})
	require.NoError(t, err)

	var decoded map[string]tweet.Identity
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded["author"])
}

func TestRecordAddress(t *testing.T) {
	program := tweet.Identity(bytes.Repeat([]byte{7}, 32))
	alice := tweet.Identity(bytes.Repeat([]byte{1}, 32))
	bob := tweet.Identity(bytes.Repeat([]byte{2}, 32))

	a1, err := tweet.RecordAddress(program, "record", alice)
	require.NoError(t, err)
	a2, err := tweet.RecordAddress(program, "record", alice)
	require.NoError(t, err)
	b, err := tweet.RecordAddress(program, "record", bob)
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "derivation must be deterministic")
	assert.NotEqual(t, a1, b, "authors must not share an address")
	assert.Len(t, a1.Key(), 64)

	parsed, err := tweet.ParseAddress(a1.String())
	require.NoError(t, err)
	assert.Equal(t, a1, parsed)
}

func TestRecordAddress_TagTooLong(t *testing.T) {
	_, err := tweet.RecordAddress(tweet.Identity{}, string(bytes.Repeat([]byte("x"), 33)), tweet.Identity{})
	assert.Error(t, err)
}
