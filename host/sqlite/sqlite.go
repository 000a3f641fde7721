// Package sqlite provides an embedded SQLite Host for the tweet record store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jacentio/tweetstore/store"
	"github.com/jacentio/tweetstore/tweet"
)

//go:embed schema.sql
var schemaSQL string

// Host implements store.Host on a SQLite database.
type Host struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
//
// The pool is limited to one connection: SQLite has a single writer, and an
// in-memory database only exists on the connection that created it.
func Open(path string) (*Host, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Host{db: db}, nil
}

// Close closes the database connection.
func (h *Host) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Airdrop credits lamports to id.
func (h *Host) Airdrop(ctx context.Context, id tweet.Identity, lamports uint64) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO balances (identity, lamports) VALUES (?, ?)
		ON CONFLICT (identity) DO UPDATE SET lamports = lamports + excluded.lamports`,
		id.String(), int64(lamports))
	return err
}

// Balance returns the lamports held by id. A missing balance is zero.
func (h *Host) Balance(ctx context.Context, id tweet.Identity) (uint64, error) {
	var lamports int64
	err := h.db.QueryRowContext(ctx,
		`SELECT lamports FROM balances WHERE identity = ?`, id.String()).Scan(&lamports)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(lamports), nil
}

// Allocate implements store.Host.
func (h *Host) Allocate(ctx context.Context, a store.Allocation) error {
	return h.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM accounts WHERE address = ?`, a.Address.Key()).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return store.ErrAccountInUse
		}

		if a.Lamports > 0 {
			res, err := tx.ExecContext(ctx,
				`UPDATE balances SET lamports = lamports - ? WHERE identity = ? AND lamports >= ?`,
				int64(a.Lamports), a.Payer.String(), int64(a.Lamports))
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return store.ErrInsufficientFunds
			}
		}

		data := a.Data
		if data == nil {
			data = []byte{}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (address, authority, lamports, data, created_at) VALUES (?, ?, ?, ?, ?)`,
			a.Address.Key(), a.Authority.String(), int64(a.Lamports), data,
			time.Now().UTC().Format(time.RFC3339))
		return err
	})
}

// Close implements store.Host.
func (h *Host) Close(ctx context.Context, addr tweet.Address, authority tweet.Identity) (uint64, error) {
	var refund uint64
	err := h.inTx(ctx, func(tx *sql.Tx) error {
		var stored string
		var lamports int64
		err := tx.QueryRowContext(ctx,
			`SELECT authority, lamports FROM accounts WHERE address = ?`, addr.Key()).Scan(&stored, &lamports)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		if stored != authority.String() {
			return store.ErrOwnerMismatch
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, addr.Key()); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO balances (identity, lamports) VALUES (?, ?)
			ON CONFLICT (identity) DO UPDATE SET lamports = lamports + excluded.lamports`,
			authority.String(), lamports)
		if err != nil {
			return err
		}
		refund = uint64(lamports)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refund, nil
}

// Load implements store.Host.
func (h *Host) Load(ctx context.Context, addr tweet.Address) (*store.Account, error) {
	var authority string
	var lamports int64
	var data []byte
	err := h.db.QueryRowContext(ctx,
		`SELECT authority, lamports, data FROM accounts WHERE address = ?`, addr.Key()).
		Scan(&authority, &lamports, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	id, err := tweet.ParseIdentity(authority)
	if err != nil {
		return nil, fmt.Errorf("account authority: %w", err)
	}
	return &store.Account{
		Address:   addr,
		Authority: id,
		Lamports:  uint64(lamports),
		Data:      data,
	}, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (h *Host) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
