package store

import (
	"crypto/sha256"

	"github.com/jacentio/tweetstore/internal/derive"
	"github.com/jacentio/tweetstore/tweet"
)

// DefaultSeedTag is the domain tag mixed into record address derivation.
const DefaultSeedTag = "record"

// DefaultProgramID owns every record address derived by a default Store.
var DefaultProgramID = tweet.Identity(sha256.Sum256([]byte("tweetstore")))

// Config holds configuration for the Store.
type Config struct {
	// ProgramID scopes address derivation to one deployment.
	// Default: DefaultProgramID
	ProgramID tweet.Identity

	// SeedTag is the domain tag for record addresses.
	// Default: "record"
	// Max: 32 bytes, longer tags are truncated.
	SeedTag string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ProgramID: DefaultProgramID,
		SeedTag:   DefaultSeedTag,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.ProgramID.IsZero() {
		c.ProgramID = DefaultProgramID
	}
	if c.SeedTag == "" {
		c.SeedTag = DefaultSeedTag
	}
	if len(c.SeedTag) > derive.MaxSeedLength {
		c.SeedTag = c.SeedTag[:derive.MaxSeedLength]
	}
}
