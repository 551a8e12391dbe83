// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is the schema version written into new backups.
// Bump it when the backup layout changes in a way restore must detect.
const BackupSchemaVersion = 1

// BackupData is the single document a backup file carries: every table's
// rows plus a schema version that restore can dispatch on.
type BackupData struct {
	// SchemaVersion lets restore refuse or adapt files from older layouts.
	SchemaVersion int `json:"schema_version"`

	Records         []CommunityRecord `json:"records"`
	SealedRecords   []SealedRecord    `json:"sealed_records"`
	AuditLogEntries []AuditLogEntry   `json:"audit_log_entries"`
}
