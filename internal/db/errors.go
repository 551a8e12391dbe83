// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrDuplicate signals a unique-constraint violation on insert.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound signals an operation aimed at a row that is not there.
	ErrNotFound = errors.New("record not found")
)

// Substrings that mark a unique-constraint failure across the supported
// engines: MySQL error 1062, Postgres SQLSTATE 23505 and the wording
// SQLite uses.
var duplicateMarkers = []string{"duplicate", "unique", "1062", "23505"}

// MapDBError folds driver-specific failures into the package sentinels so
// callers never have to match on driver error types. Matching works on the
// error text, which keeps driver imports out of the store layer.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return ErrDuplicate
		}
	}
	return err
}
