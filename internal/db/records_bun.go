// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/util/slicest"
)

// RecordModel is the Bun mapping for the records table.
type RecordModel struct {
	bun.BaseModel `bun:"table:records"`

	ID              string         `bun:"id,pk"`
	Name            string         `bun:"name,notnull"`
	Content         string         `bun:"content,notnull"`
	CulturalContext sql.NullString `bun:"cultural_context"`
}

// SealedRecordModel is the Bun mapping for the sealed_records table.
// The policy snapshot is flattened into columns so it stays queryable.
type SealedRecordModel struct {
	bun.BaseModel `bun:"table:sealed_records"`

	RecordID          string    `bun:"record_id,pk"`
	Envelope          string    `bun:"envelope,notnull"`
	EncryptionEnabled bool      `bun:"encryption_enabled"`
	AccessLevel       string    `bun:"access_level,notnull"`
	SensitivityLevel  string    `bun:"sensitivity_level,notnull"`
	Anonymize         bool      `bun:"anonymize"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
}

// AuditLogModel is the Bun mapping for the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`

	ID        int    `bun:"id,pk,autoincrement"`
	Timestamp string `bun:"timestamp"`
	Username  string `bun:"username"`
	Action    string `bun:"action"`
	Details   string `bun:"details"`
}

func marshalContext(ctxMap map[string]any) (sql.NullString, error) {
	if len(ctxMap) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(ctxMap)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode cultural context: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalContext(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var ctxMap map[string]any
	if err := json.Unmarshal([]byte(ns.String), &ctxMap); err != nil {
		return nil, fmt.Errorf("failed to decode cultural context: %w", err)
	}
	return ctxMap, nil
}

func recordToModel(record model.CommunityRecord) (*RecordModel, error) {
	ctxCol, err := marshalContext(record.CulturalContext)
	if err != nil {
		return nil, err
	}
	return &RecordModel{
		ID:              record.ID,
		Name:            record.Name,
		Content:         record.Content,
		CulturalContext: ctxCol,
	}, nil
}

func recordFromModel(m *RecordModel) (model.CommunityRecord, error) {
	ctxMap, err := unmarshalContext(m.CulturalContext)
	if err != nil {
		return model.CommunityRecord{}, err
	}
	return model.CommunityRecord{
		ID:              m.ID,
		Name:            m.Name,
		Content:         m.Content,
		CulturalContext: ctxMap,
	}, nil
}

func sealedToModel(sealed model.SealedRecord) *SealedRecordModel {
	return &SealedRecordModel{
		RecordID:          sealed.RecordID,
		Envelope:          sealed.Envelope,
		EncryptionEnabled: sealed.Policy.EncryptionEnabled,
		AccessLevel:       string(sealed.Policy.AccessLevel),
		SensitivityLevel:  string(sealed.Policy.SensitivityLevel),
		Anonymize:         sealed.Policy.Anonymize,
		CreatedAt:         sealed.CreatedAt,
	}
}

func sealedFromModel(m *SealedRecordModel) model.SealedRecord {
	return model.SealedRecord{
		RecordID: m.RecordID,
		Envelope: m.Envelope,
		Policy: model.PrivacyPolicy{
			EncryptionEnabled: m.EncryptionEnabled,
			AccessLevel:       model.AccessLevel(m.AccessLevel),
			SensitivityLevel:  model.SensitivityLevel(m.SensitivityLevel),
			Anonymize:         m.Anonymize,
		},
		CreatedAt: m.CreatedAt,
	}
}

func auditEntryFromModel(m *AuditLogModel) model.AuditLogEntry {
	return model.AuditLogEntry{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		Username:  m.Username,
		Action:    m.Action,
		Details:   m.Details,
	}
}

// AddRecordBun inserts a community record.
func AddRecordBun(bdb *bun.DB, record model.CommunityRecord) error {
	m, err := recordToModel(record)
	if err != nil {
		return err
	}
	_, err = bdb.NewInsert().Model(m).Exec(context.Background())
	return MapDBError(err)
}

// GetRecordBun fetches a single record by ID. It returns (nil, nil)
// when no record with that ID exists.
func GetRecordBun(bdb *bun.DB, id string) (*model.CommunityRecord, error) {
	m := new(RecordModel)
	err := bdb.NewSelect().Model(m).Where("id = ?", id).Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, MapDBError(err)
	}
	record, err := recordFromModel(m)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAllRecordsBun returns every community record ordered by name.
func GetAllRecordsBun(bdb *bun.DB) ([]model.CommunityRecord, error) {
	var models []RecordModel
	err := bdb.NewSelect().Model(&models).OrderExpr("name ASC, id ASC").Scan(context.Background())
	if err != nil {
		return nil, MapDBError(err)
	}
	return slicest.MapX(models, func(m RecordModel) (model.CommunityRecord, error) {
		return recordFromModel(&m)
	})
}

// UpdateRecordBun rewrites the stored fields of an existing record.
func UpdateRecordBun(bdb *bun.DB, record model.CommunityRecord) error {
	m, err := recordToModel(record)
	if err != nil {
		return err
	}
	res, err := bdb.NewUpdate().Model(m).
		Column("name", "content", "cultural_context").
		Where("id = ?", m.ID).
		Exec(context.Background())
	if err != nil {
		return MapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecordBun removes a record and its sealed envelope, if any.
func DeleteRecordBun(bdb *bun.DB, id string) error {
	return WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SealedRecordModel)(nil)).Where("record_id = ?", id).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		res, err := tx.NewDelete().Model((*RecordModel)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return MapDBError(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountRecordsBun returns the number of stored records.
func CountRecordsBun(bdb *bun.DB) (int, error) {
	count, err := bdb.NewSelect().Model((*RecordModel)(nil)).Count(context.Background())
	if err != nil {
		return 0, MapDBError(err)
	}
	return count, nil
}

// SaveSealedRecordBun stores a sealed envelope for a record, replacing
// any previous envelope for the same record ID.
func SaveSealedRecordBun(bdb *bun.DB, sealed model.SealedRecord) error {
	m := sealedToModel(sealed)
	return WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SealedRecordModel)(nil)).Where("record_id = ?", m.RecordID).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
}

// GetSealedRecordBun fetches the sealed envelope for a record ID. It
// returns (nil, nil) when the record has no sealed envelope.
func GetSealedRecordBun(bdb *bun.DB, recordID string) (*model.SealedRecord, error) {
	m := new(SealedRecordModel)
	err := bdb.NewSelect().Model(m).Where("record_id = ?", recordID).Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, MapDBError(err)
	}
	sealed := sealedFromModel(m)
	return &sealed, nil
}

// GetAllSealedRecordsBun returns every sealed envelope, newest first.
func GetAllSealedRecordsBun(bdb *bun.DB) ([]model.SealedRecord, error) {
	var models []SealedRecordModel
	err := bdb.NewSelect().Model(&models).OrderExpr("created_at DESC, record_id ASC").Scan(context.Background())
	if err != nil {
		return nil, MapDBError(err)
	}
	return slicest.Map(models, func(m SealedRecordModel) model.SealedRecord {
		return sealedFromModel(&m)
	}), nil
}

// DeleteSealedRecordBun removes the sealed envelope for a record ID.
func DeleteSealedRecordBun(bdb *bun.DB, recordID string) error {
	res, err := bdb.NewDelete().Model((*SealedRecordModel)(nil)).Where("record_id = ?", recordID).Exec(context.Background())
	if err != nil {
		return MapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSealedRecordsBun returns the number of sealed envelopes.
func CountSealedRecordsBun(bdb *bun.DB) (int, error) {
	count, err := bdb.NewSelect().Model((*SealedRecordModel)(nil)).Count(context.Background())
	if err != nil {
		return 0, MapDBError(err)
	}
	return count, nil
}

// LogActionBun appends an audit log entry attributed to the current OS
// user. The timestamp comes from the database default.
func LogActionBun(bdb *bun.DB, action string, details string) error {
	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
		// Windows reports DOMAIN\user; keep the short name.
		if parts := strings.Split(username, `\`); len(parts) > 1 {
			username = parts[len(parts)-1]
		}
	}
	err := ExecRaw(context.Background(), bdb,
		"INSERT INTO audit_log (username, action, details) VALUES (?, ?, ?)",
		username, action, details)
	return MapDBError(err)
}

// GetAllAuditLogEntriesBun returns the audit trail, newest first.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	var models []AuditLogModel
	err := bdb.NewSelect().Model(&models).OrderExpr("id DESC").Scan(context.Background())
	if err != nil {
		return nil, MapDBError(err)
	}
	return slicest.Map(models, func(m AuditLogModel) model.AuditLogEntry {
		return auditEntryFromModel(&m)
	}), nil
}

// ExportDataForBackupBun reads all tables inside one transaction so the
// backup is a consistent snapshot.
func ExportDataForBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	backup := &model.BackupData{SchemaVersion: model.BackupSchemaVersion}
	err := WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		var recordModels []RecordModel
		if err := tx.NewSelect().Model(&recordModels).OrderExpr("id ASC").Scan(ctx); err != nil {
			return MapDBError(err)
		}
		for i := range recordModels {
			record, err := recordFromModel(&recordModels[i])
			if err != nil {
				return err
			}
			backup.Records = append(backup.Records, record)
		}

		var sealedModels []SealedRecordModel
		if err := tx.NewSelect().Model(&sealedModels).OrderExpr("record_id ASC").Scan(ctx); err != nil {
			return MapDBError(err)
		}
		for i := range sealedModels {
			backup.SealedRecords = append(backup.SealedRecords, sealedFromModel(&sealedModels[i]))
		}

		var auditModels []AuditLogModel
		if err := tx.NewSelect().Model(&auditModels).OrderExpr("id ASC").Scan(ctx); err != nil {
			return MapDBError(err)
		}
		for i := range auditModels {
			backup.AuditLogEntries = append(backup.AuditLogEntries, auditEntryFromModel(&auditModels[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// auditTimestampValue converts a backup timestamp into a value the
// target backend accepts. MySQL rejects RFC3339 literals for TIMESTAMP
// columns, so parsed values are bound as time.Time.
func auditTimestampValue(ts string) interface{} {
	if ts == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return ts
}

// ImportDataFromBackupBun wipes the current tables and loads the backup
// contents in their place. The whole restore runs in one transaction.
func ImportDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	return WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []string{"audit_log", "sealed_records", "records"} {
			if err := ExecRaw(ctx, tx, "DELETE FROM "+table); err != nil {
				return MapDBError(err)
			}
		}
		for _, record := range backup.Records {
			m, err := recordToModel(record)
			if err != nil {
				return err
			}
			if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		for _, sealed := range backup.SealedRecords {
			if _, err := tx.NewInsert().Model(sealedToModel(sealed)).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		for _, entry := range backup.AuditLogEntries {
			err := ExecRaw(ctx, tx,
				"INSERT INTO audit_log (timestamp, username, action, details) VALUES (?, ?, ?, ?)",
				auditTimestampValue(entry.Timestamp), entry.Username, entry.Action, entry.Details)
			if err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}

// IntegrateDataFromBackupBun merges backup contents into the current
// database. Existing rows win; duplicates from the backup are skipped.
// Audit history is never merged, only replaced by a full restore.
func IntegrateDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	return WithTx(context.Background(), bdb, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range backup.Records {
			m, err := recordToModel(record)
			if err != nil {
				return err
			}
			if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
				if mapped := MapDBError(err); !errors.Is(mapped, ErrDuplicate) {
					return mapped
				}
			}
		}
		for _, sealed := range backup.SealedRecords {
			if _, err := tx.NewInsert().Model(sealedToModel(sealed)).Exec(ctx); err != nil {
				if mapped := MapDBError(err); !errors.Is(mapped, ErrDuplicate) {
					return mapped
				}
			}
		}
		return nil
	})
}
