// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/uptrace/bun"
)

// execRawProvider is the slice of *bun.DB / bun.Tx the raw helpers
// need, so they work inside and outside transactions.
type execRawProvider interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// ExecRaw executes a raw SQL statement through Bun. Use it for the few
// statements the query builder cannot express, such as dialect specific
// maintenance commands.
func ExecRaw(ctx context.Context, db execRawProvider, query string, args ...interface{}) error {
	_, err := db.NewRaw(query, args...).Exec(ctx)
	return err
}

// QueryRawInto runs a raw SQL query and scans the result set into dest,
// which must be a pointer to a slice or struct.
func QueryRawInto(ctx context.Context, db execRawProvider, dest interface{}, query string, args ...interface{}) error {
	return db.NewRaw(query, args...).Scan(ctx, dest)
}

// WithTx runs fn inside a transaction, committing on success and
// rolling back on error or panic.
func WithTx(ctx context.Context, bdb *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	tx, err := bdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	done = true
	return tx.Commit()
}
