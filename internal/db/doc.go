// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db provides persistence for community records, sealed
// envelopes and the audit log. It speaks SQLite, PostgreSQL and MySQL
// through database/sql and uses Bun for typed queries on top of the
// shared pool. Schema changes ship as embedded migrations and are
// applied via RunMigrations.
package db
