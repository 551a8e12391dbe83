// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/state"
)

// initTestDBT initializes an in-memory sqlite DB for tests. Every call uses
// a fresh shared-cache DSN so connections from the pool see the same
// database while tests stay independent of each other.
func initTestDBT(t *testing.T) {
	t.Helper()
	i18n.Init("en")
	state.PassphraseCache.Clear()
	t.Cleanup(state.PassphraseCache.Clear)
	dsn := fmt.Sprintf("file:tuidb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := db.InitDB("sqlite", dsn); err != nil {
		t.Fatalf("initTestDBT: db.InitDB failed: %v", err)
	}
}
