// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Lorekeeper using Cobra.
// It wires configuration, i18n and database setup, and provides commands for
// record management, sealing and opening envelopes, redaction previews, access
// checks, the audit trail and backup/restore. CLI code should remain thin and
// delegate the actual privacy semantics to internal/privacy and persistence to
// internal/db.
package cli
