// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/uptrace/bun"

	"github.com/lorekeeper/lorekeeper/internal/model"
)

// Store is the persistence interface the rest of the application talks
// to. All implementations are expected to be safe for concurrent use.
type Store interface {
	// Record methods
	AddRecord(record model.CommunityRecord) error
	GetRecord(id string) (*model.CommunityRecord, error)
	GetAllRecords() ([]model.CommunityRecord, error)
	UpdateRecord(record model.CommunityRecord) error
	DeleteRecord(id string) error
	CountRecords() (int, error)

	// Sealed record methods
	SaveSealedRecord(sealed model.SealedRecord) error
	GetSealedRecord(recordID string) (*model.SealedRecord, error)
	GetAllSealedRecords() ([]model.SealedRecord, error)
	DeleteSealedRecord(recordID string) error
	CountSealedRecords() (int, error)

	// Audit log methods
	LogAction(action string, details string) error
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)

	// Backup methods
	ExportDataForBackup() (*model.BackupData, error)
	ImportDataFromBackup(backup *model.BackupData) error
	IntegrateDataFromBackup(backup *model.BackupData) error

	// BunDB exposes the underlying Bun handle for maintenance tasks
	// and raw queries.
	BunDB() *bun.DB

	Close() error
}
