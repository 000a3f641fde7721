package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jacentio/tweetstore/tweet"
)

// Store provides the create and delete operations for tweet records.
type Store struct {
	host   Host
	clock  Clock
	config Config
	logger *slog.Logger
}

// New creates a new Store instance.
func New(host Host, clock Clock, config Config) *Store {
	config.validate()
	if clock == nil {
		clock = SystemClock
	}
	return &Store{
		host:   host,
		clock:  clock,
		config: config,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used for lifecycle messages.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// CreateAccounts are the resolved accounts for CreateRecord.
type CreateAccounts struct {
	// Record is the address to allocate. It must not exist yet.
	Record tweet.Address

	// Sender is the authenticated author. It pays for the allocation.
	Sender tweet.Identity
}

// DeleteAccounts are the resolved accounts for DeleteRecord.
type DeleteAccounts struct {
	// Record is the address to close. It must hold the sender's record.
	Record tweet.Address

	// Sender is the authenticated author. It receives the refund.
	Sender tweet.Identity
}

// AddressOf returns the record address for author.
func (s *Store) AddressOf(author tweet.Identity) tweet.Address {
	// validate bounds the tag, so derivation cannot fail.
	addr, _ := tweet.RecordAddress(s.config.ProgramID, s.config.SeedTag, author)
	return addr
}

// CreateRecord stores content as the sender's record.
//
// Content is validated before anything is written; a rejected call leaves
// the host untouched.
func (s *Store) CreateRecord(ctx context.Context, accts CreateAccounts, content string) error {
	if err := tweet.ValidateContent(content); err != nil {
		return err
	}
	if err := s.checkSeeds(accts.Record, accts.Sender); err != nil {
		return err
	}

	rec := tweet.Record{
		Author:    accts.Sender,
		Content:   content,
		CreatedAt: s.clock.Now().Unix(),
	}
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	err = s.host.Allocate(ctx, Allocation{
		Address:   accts.Record,
		Payer:     accts.Sender,
		Authority: accts.Sender,
		Lamports:  RentExemptMinimum(tweet.Space),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("allocate record %s: %w", accts.Record, err)
	}

	s.logger.Debug("record created",
		"address", accts.Record,
		"author", accts.Sender,
		"createdAt", rec.CreatedAt,
	)
	return nil
}

// DeleteRecord closes the sender's record and refunds its deposit to the sender.
func (s *Store) DeleteRecord(ctx context.Context, accts DeleteAccounts) error {
	if err := s.checkSeeds(accts.Record, accts.Sender); err != nil {
		return err
	}

	rec, err := s.Record(ctx, accts.Record)
	if err != nil {
		return err
	}
	if rec.Author != accts.Sender {
		return fmt.Errorf("delete record %s: %w", accts.Record, ErrOwnerMismatch)
	}

	// The host repeats the authority check atomically with the close.
	refund, err := s.host.Close(ctx, accts.Record, accts.Sender)
	if err != nil {
		return fmt.Errorf("close record %s: %w", accts.Record, err)
	}

	s.logger.Debug("record deleted",
		"address", accts.Record,
		"author", accts.Sender,
		"refund", refund,
	)
	return nil
}

// Record loads and decodes the record stored at addr.
func (s *Store) Record(ctx context.Context, addr tweet.Address) (*tweet.Record, error) {
	acct, err := s.host.Load(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load record %s: %w", addr, err)
	}

	var rec tweet.Record
	if err := rec.UnmarshalBinary(acct.Data); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", addr, err)
	}
	return &rec, nil
}

// Send creates the sender's record at its derived address.
func (s *Store) Send(ctx context.Context, sender tweet.Identity, content string) error {
	return s.CreateRecord(ctx, CreateAccounts{Record: s.AddressOf(sender), Sender: sender}, content)
}

// Delete removes the sender's record from its derived address.
func (s *Store) Delete(ctx context.Context, sender tweet.Identity) error {
	return s.DeleteRecord(ctx, DeleteAccounts{Record: s.AddressOf(sender), Sender: sender})
}

// Get loads the record owned by author.
func (s *Store) Get(ctx context.Context, author tweet.Identity) (*tweet.Record, error) {
	return s.Record(ctx, s.AddressOf(author))
}

func (s *Store) checkSeeds(addr tweet.Address, sender tweet.Identity) error {
	if want := s.AddressOf(sender); addr != want {
		return fmt.Errorf("%w: got %s, want %s", ErrSeedsMismatch, addr, want)
	}
	return nil
}
