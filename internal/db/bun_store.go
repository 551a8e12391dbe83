// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/lorekeeper/lorekeeper/internal/model"
)

// BunStore implements Store on top of a *bun.DB. One implementation
// covers SQLite, PostgreSQL and MySQL; the dialect is chosen when the
// handle is created.
type BunStore struct {
	bun *bun.DB
}

// NewBunStore wraps an existing Bun handle in a Store.
func NewBunStore(bdb *bun.DB) *BunStore {
	return &BunStore{bun: bdb}
}

// BunDB returns the underlying Bun handle.
func (s *BunStore) BunDB() *bun.DB {
	return s.bun
}

// Close closes the underlying database connection.
func (s *BunStore) Close() error {
	return s.bun.Close()
}

func (s *BunStore) AddRecord(record model.CommunityRecord) error {
	if err := AddRecordBun(s.bun, record); err != nil {
		return err
	}
	_ = s.LogAction("ADD_RECORD", fmt.Sprintf("Added record '%s' (%s)", record.Name, record.ID))
	return nil
}

func (s *BunStore) GetRecord(id string) (*model.CommunityRecord, error) {
	return GetRecordBun(s.bun, id)
}

func (s *BunStore) GetAllRecords() ([]model.CommunityRecord, error) {
	return GetAllRecordsBun(s.bun)
}

func (s *BunStore) UpdateRecord(record model.CommunityRecord) error {
	if err := UpdateRecordBun(s.bun, record); err != nil {
		return err
	}
	_ = s.LogAction("UPDATE_RECORD", fmt.Sprintf("Updated record '%s' (%s)", record.Name, record.ID))
	return nil
}

func (s *BunStore) DeleteRecord(id string) error {
	if err := DeleteRecordBun(s.bun, id); err != nil {
		return err
	}
	_ = s.LogAction("DELETE_RECORD", fmt.Sprintf("Deleted record %s", id))
	return nil
}

func (s *BunStore) CountRecords() (int, error) {
	return CountRecordsBun(s.bun)
}

func (s *BunStore) SaveSealedRecord(sealed model.SealedRecord) error {
	if err := SaveSealedRecordBun(s.bun, sealed); err != nil {
		return err
	}
	_ = s.LogAction("SEAL_RECORD", fmt.Sprintf("Sealed record %s (access=%s, sensitivity=%s)",
		sealed.RecordID, sealed.Policy.AccessLevel, sealed.Policy.SensitivityLevel))
	return nil
}

func (s *BunStore) GetSealedRecord(recordID string) (*model.SealedRecord, error) {
	return GetSealedRecordBun(s.bun, recordID)
}

func (s *BunStore) GetAllSealedRecords() ([]model.SealedRecord, error) {
	return GetAllSealedRecordsBun(s.bun)
}

func (s *BunStore) DeleteSealedRecord(recordID string) error {
	if err := DeleteSealedRecordBun(s.bun, recordID); err != nil {
		return err
	}
	_ = s.LogAction("UNSEAL_RECORD", fmt.Sprintf("Removed sealed envelope for record %s", recordID))
	return nil
}

func (s *BunStore) CountSealedRecords() (int, error) {
	return CountSealedRecordsBun(s.bun)
}

func (s *BunStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

func (s *BunStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

func (s *BunStore) ExportDataForBackup() (*model.BackupData, error) {
	backup, err := ExportDataForBackupBun(s.bun)
	if err != nil {
		return nil, err
	}
	_ = s.LogAction("EXPORT_BACKUP", fmt.Sprintf("Exported %d records, %d sealed envelopes", len(backup.Records), len(backup.SealedRecords)))
	return backup, nil
}

func (s *BunStore) ImportDataFromBackup(backup *model.BackupData) error {
	if err := ImportDataFromBackupBun(s.bun, backup); err != nil {
		return err
	}
	_ = s.LogAction("RESTORE_BACKUP", fmt.Sprintf("Restored %d records, %d sealed envelopes (full restore)", len(backup.Records), len(backup.SealedRecords)))
	return nil
}

func (s *BunStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	if err := IntegrateDataFromBackupBun(s.bun, backup); err != nil {
		return err
	}
	_ = s.LogAction("INTEGRATE_BACKUP", fmt.Sprintf("Integrated backup with %d records, %d sealed envelopes", len(backup.Records), len(backup.SealedRecords)))
	return nil
}
