// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
)

// WithTestStore runs fn against a fresh in-memory sqlite store and swaps
// the package-level store back afterwards, so tests can lean on the
// package helpers without touching a real database.
func WithTestStore(t *testing.T, fn func(s *BunStore)) {
	t.Helper()

	saved := store

	// Named in-memory database with shared cache so the whole pool sees
	// the same schema.
	if err := InitDB("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared"); err != nil {
		t.Fatalf("open test store: %v", err)
	}
	s, ok := store.(*BunStore)
	if !ok {
		t.Fatalf("store is not *BunStore")
	}

	defer func() {
		_ = s.Close()
		store = saved
	}()

	fn(s)
}
