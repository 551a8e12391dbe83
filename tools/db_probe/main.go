// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// db_probe opens a database, runs the migrations and prints row counts.
// Use it to verify a DSN before pointing lorekeeper.yaml or
// `lorekeeper migrate` at it.
//
// Usage: db_probe <type> <dsn>
package main

import (
	"fmt"
	"os"

	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <type> <dsn>\n", os.Args[0])
		os.Exit(2)
	}
	dbType, dsn := os.Args[1], os.Args[2]

	i18n.Init("en")
	if err := db.InitDB(dbType, dsn); err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}

	records, err := db.CountRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: count records: %v\n", err)
		os.Exit(1)
	}
	sealed, err := db.CountSealedRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: count sealed records: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ok: %d records, %d sealed envelopes\n", records, sealed)
}
