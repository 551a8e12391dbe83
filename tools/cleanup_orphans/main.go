// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// This is a one-time cleanup utility to remove orphaned sealed envelopes.
// An envelope is orphaned when its record_id no longer matches any row in
// records; restoring a backup taken before the record was added can leave
// these behind.

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/lorekeeper/lorekeeper/internal/db"
)

func main() {
	// Initialize the database
	store, err := db.New("sqlite", "./lorekeeper.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	bdb := store.BunDB()
	ctx := context.Background()

	// Find sealed envelopes whose record no longer exists
	query := `
		SELECT sr.record_id
		FROM sealed_records sr
		LEFT JOIN records r ON r.id = sr.record_id
		WHERE r.id IS NULL
		ORDER BY sr.record_id
	`

	var orphans []string
	if err := db.QueryRawInto(ctx, bdb, &orphans, query); err != nil {
		log.Fatalf("Failed to query orphaned sealed envelopes: %v", err)
	}

	if len(orphans) == 0 {
		fmt.Println("✓ No orphaned sealed envelopes found. Database is clean!")
		return
	}

	fmt.Printf("Found %d orphaned sealed envelope(s):\n", len(orphans))
	for _, id := range orphans {
		fmt.Printf("  - record_id %s\n", id)
	}

	// Delete through the store so each removal lands in the audit log.
	for _, id := range orphans {
		if err := db.DeleteSealedRecord(id); err != nil {
			log.Fatalf("Failed to delete sealed envelope for %s: %v", id, err)
		}
	}

	fmt.Printf("\n✓ Removed %d orphaned sealed envelope(s).\n", len(orphans))
	fmt.Println("\nCleanup complete! Every remaining envelope belongs to a live record.")
}
