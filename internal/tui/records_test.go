// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"

	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/model"
)

func TestContextKeySummary(t *testing.T) {
	if got := contextKeySummary(nil); got != "-" {
		t.Fatalf("expected '-' for empty context, got %q", got)
	}
	ctx := map[string]any{"region": "north", "dialect": "old", "era": "pre-contact"}
	if got := contextKeySummary(ctx); got != "dialect,era,region" {
		t.Fatalf("expected sorted key list, got %q", got)
	}
}

func TestRecordsFilter(t *testing.T) {
	i18n.Init("en")
	m := &recordsModel{
		allRecords: []model.CommunityRecord{
			{ID: "rec-1", Name: "Winter Tales", Content: "a"},
			{ID: "rec-2", Name: "Harvest Song", Content: "b", CulturalContext: map[string]any{"region": "east"}},
		},
		sealedByID: map[string]model.SealedRecord{},
	}
	m.rebuildTableRows()
	if len(m.table.Rows()) != 2 || len(m.visible) != 2 {
		t.Fatalf("expected 2 rows, got %d rows / %d visible", len(m.table.Rows()), len(m.visible))
	}

	// Filter on the name column.
	m.filter = "harvest"
	m.filterCol = 2
	m.rebuildTableRows()
	if len(m.visible) != 1 {
		t.Fatalf("expected 1 visible record, got %d", len(m.visible))
	}
	if m.visible[0].ID != "rec-2" {
		t.Fatalf("wrong record survived the filter: %s", m.visible[0].ID)
	}

	// Filter on the context column.
	m.filter = "region"
	m.filterCol = 3
	m.rebuildTableRows()
	if len(m.visible) != 1 || m.visible[0].ID != "rec-2" {
		t.Fatalf("expected only the record with context keys, got %v", m.visible)
	}

	// Clearing the filter brings everything back.
	m.filter = ""
	m.rebuildTableRows()
	if len(m.visible) != 2 {
		t.Fatalf("expected all records after clearing the filter, got %d", len(m.visible))
	}
}

func TestRecordsDetailRedactedPreview(t *testing.T) {
	i18n.Init("en")

	record := model.CommunityRecord{
		ID:              "story-001",
		Name:            "Elder Maria",
		Content:         "The spring ritual begins at dawn.",
		CulturalContext: map[string]any{"ceremony": "spring", "origin": "river clan"},
	}
	policy := model.DefaultPolicy()
	policy.SensitivityLevel = model.SensitivityHigh
	policy.Anonymize = true

	m := &recordsModel{
		allRecords: []model.CommunityRecord{record},
		sealedByID: map[string]model.SealedRecord{
			record.ID: {RecordID: record.ID, Envelope: "aa:bb:cc:dd", Policy: policy},
		},
	}
	m.rebuildTableRows()
	m.showDetail = true

	v := m.detailView()
	if !strings.Contains(v, "Elder Maria") {
		t.Fatalf("expected original name in detail view, got: %q", v)
	}
	if !strings.Contains(v, "Sealed under policy") {
		t.Fatalf("expected policy line for a sealed record, got: %q", v)
	}

	m.showRedacted = true
	v = m.detailView()
	if !strings.Contains(v, "Redacted preview") {
		t.Fatalf("expected redaction banner, got: %q", v)
	}
	if !strings.Contains(v, "Anonymous Community") {
		t.Fatalf("expected anonymized name, got: %q", v)
	}
	if strings.Contains(v, "Elder Maria") {
		t.Fatalf("original name leaked into the redacted preview: %q", v)
	}
	if !strings.Contains(v, "masked: true") {
		t.Fatalf("expected masked context under high sensitivity, got: %q", v)
	}
	if strings.Contains(v, "river clan") {
		t.Fatalf("original context leaked into the redacted preview: %q", v)
	}
}

func TestRecordsDetailUnsealed(t *testing.T) {
	i18n.Init("en")
	m := &recordsModel{
		allRecords: []model.CommunityRecord{{ID: "open-1", Name: "Open Story", Content: "c"}},
		sealedByID: map[string]model.SealedRecord{},
	}
	m.rebuildTableRows()
	m.showDetail = true

	v := m.detailView()
	if !strings.Contains(v, "No sealed envelope for this record.") {
		t.Fatalf("expected unsealed note, got: %q", v)
	}
	if !strings.Contains(v, "(none)") {
		t.Fatalf("expected empty context marker, got: %q", v)
	}
}

func TestSelectedRecordEmptyTable(t *testing.T) {
	m := &recordsModel{}
	m.rebuildTableRows()
	if m.selectedRecord() != nil {
		t.Fatalf("expected nil selection on an empty table")
	}
}
