package db

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lorekeeper/lorekeeper/internal/model"
)

func sampleRecord(id, name string) model.CommunityRecord {
	return model.CommunityRecord{
		ID:      id,
		Name:    name,
		Content: "notes for " + name,
		CulturalContext: map[string]any{
			"tradition": "solstice gathering",
			"region":    "north valley",
		},
	}
}

func sampleSealed(recordID string) model.SealedRecord {
	return model.SealedRecord{
		RecordID: recordID,
		Envelope: "00ff:0011:2233:4455",
		Policy: model.PrivacyPolicy{
			EncryptionEnabled: true,
			AccessLevel:       model.AccessRestricted,
			SensitivityLevel:  model.SensitivityHigh,
			Anonymize:         true,
		},
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestRecord_AddGetRoundTrip(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		record := sampleRecord("rec-1", "Sunrise Circle")
		if err := s.AddRecord(record); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}

		got, err := s.GetRecord("rec-1")
		if err != nil {
			t.Fatalf("GetRecord failed: %v", err)
		}
		if got == nil {
			t.Fatalf("expected record, got nil")
		}
		if !reflect.DeepEqual(*got, record) {
			t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", *got, record)
		}
	})
}

func TestRecord_NoCulturalContext(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		record := model.CommunityRecord{ID: "rec-bare", Name: "Bare", Content: "no context"}
		if err := s.AddRecord(record); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		got, err := s.GetRecord("rec-bare")
		if err != nil {
			t.Fatalf("GetRecord failed: %v", err)
		}
		if got.CulturalContext != nil {
			t.Errorf("expected nil cultural context, got %v", got.CulturalContext)
		}
	})
}

func TestRecord_GetMissingReturnsNil(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		got, err := s.GetRecord("no-such-id")
		if err != nil {
			t.Fatalf("GetRecord failed: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil for missing record, got %+v", got)
		}
	})
}

func TestRecord_AddDuplicateBehavior(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		record := sampleRecord("dup-1", "First")
		if err := s.AddRecord(record); err != nil {
			t.Fatalf("unexpected error adding record: %v", err)
		}
		if err := s.AddRecord(record); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate on duplicate AddRecord, got: %v", err)
		}
	})
}

func TestRecord_GetAllOrderedByName(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		for _, r := range []model.CommunityRecord{
			sampleRecord("r3", "Cedar Hollow"),
			sampleRecord("r1", "Aspen Ridge"),
			sampleRecord("r2", "Birch Meadow"),
		} {
			if err := s.AddRecord(r); err != nil {
				t.Fatalf("AddRecord failed: %v", err)
			}
		}

		records, err := s.GetAllRecords()
		if err != nil {
			t.Fatalf("GetAllRecords failed: %v", err)
		}
		var names []string
		for _, r := range records {
			names = append(names, r.Name)
		}
		want := []string{"Aspen Ridge", "Birch Meadow", "Cedar Hollow"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("unexpected order: got %v, want %v", names, want)
		}
	})
}

func TestRecord_Update(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		record := sampleRecord("upd-1", "Before")
		if err := s.AddRecord(record); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}

		record.Name = "After"
		record.Content = "rewritten"
		record.CulturalContext = map[string]any{"masked": true}
		if err := s.UpdateRecord(record); err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}

		got, err := s.GetRecord("upd-1")
		if err != nil {
			t.Fatalf("GetRecord failed: %v", err)
		}
		if !reflect.DeepEqual(*got, record) {
			t.Errorf("update not persisted:\n got: %+v\nwant: %+v", *got, record)
		}
	})
}

func TestRecord_UpdateMissingReturnsNotFound(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.UpdateRecord(sampleRecord("nope", "Ghost")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestRecord_DeleteRemovesSealedEnvelope(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.AddRecord(sampleRecord("rec-del", "Doomed")); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		if err := s.SaveSealedRecord(sampleSealed("rec-del")); err != nil {
			t.Fatalf("SaveSealedRecord failed: %v", err)
		}

		if err := s.DeleteRecord("rec-del"); err != nil {
			t.Fatalf("DeleteRecord failed: %v", err)
		}

		rec, err := s.GetRecord("rec-del")
		if err != nil || rec != nil {
			t.Fatalf("expected record gone, got %+v, err %v", rec, err)
		}
		sealed, err := s.GetSealedRecord("rec-del")
		if err != nil || sealed != nil {
			t.Fatalf("expected sealed envelope gone, got %+v, err %v", sealed, err)
		}
	})
}

func TestRecord_DeleteMissingReturnsNotFound(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.DeleteRecord("ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestSealedRecord_SaveGetRoundTrip(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		sealed := sampleSealed("rec-s1")
		if err := s.SaveSealedRecord(sealed); err != nil {
			t.Fatalf("SaveSealedRecord failed: %v", err)
		}

		got, err := s.GetSealedRecord("rec-s1")
		if err != nil {
			t.Fatalf("GetSealedRecord failed: %v", err)
		}
		if got == nil {
			t.Fatalf("expected sealed record, got nil")
		}
		if got.Envelope != sealed.Envelope {
			t.Errorf("envelope mismatch: got %q, want %q", got.Envelope, sealed.Envelope)
		}
		if !reflect.DeepEqual(got.Policy, sealed.Policy) {
			t.Errorf("policy mismatch: got %+v, want %+v", got.Policy, sealed.Policy)
		}
		if !got.CreatedAt.Equal(sealed.CreatedAt) {
			t.Errorf("created_at mismatch: got %v, want %v", got.CreatedAt, sealed.CreatedAt)
		}
	})
}

func TestSealedRecord_SaveReplacesExisting(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		first := sampleSealed("rec-s2")
		if err := s.SaveSealedRecord(first); err != nil {
			t.Fatalf("first SaveSealedRecord failed: %v", err)
		}

		second := first
		second.Envelope = "aa:bb:cc:dd"
		second.Policy.AccessLevel = model.AccessPrivate
		if err := s.SaveSealedRecord(second); err != nil {
			t.Fatalf("second SaveSealedRecord failed: %v", err)
		}

		got, err := s.GetSealedRecord("rec-s2")
		if err != nil {
			t.Fatalf("GetSealedRecord failed: %v", err)
		}
		if got.Envelope != second.Envelope {
			t.Errorf("expected replacement envelope %q, got %q", second.Envelope, got.Envelope)
		}
		if got.Policy.AccessLevel != model.AccessPrivate {
			t.Errorf("expected replacement policy, got %+v", got.Policy)
		}

		count, err := s.CountSealedRecords()
		if err != nil {
			t.Fatalf("CountSealedRecords failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 sealed record after replacement, got %d", count)
		}
	})
}

func TestSealedRecord_GetMissingReturnsNil(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		got, err := s.GetSealedRecord("no-envelope")
		if err != nil {
			t.Fatalf("GetSealedRecord failed: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil for missing sealed record, got %+v", got)
		}
	})
}

func TestSealedRecord_DeleteMissingReturnsNotFound(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.DeleteSealedRecord("ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestCounts(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		for _, id := range []string{"c1", "c2", "c3"} {
			if err := s.AddRecord(sampleRecord(id, "Rec "+id)); err != nil {
				t.Fatalf("AddRecord failed: %v", err)
			}
		}
		if err := s.SaveSealedRecord(sampleSealed("c1")); err != nil {
			t.Fatalf("SaveSealedRecord failed: %v", err)
		}

		records, err := s.CountRecords()
		if err != nil {
			t.Fatalf("CountRecords failed: %v", err)
		}
		if records != 3 {
			t.Errorf("expected 3 records, got %d", records)
		}
		sealed, err := s.CountSealedRecords()
		if err != nil {
			t.Fatalf("CountSealedRecords failed: %v", err)
		}
		if sealed != 1 {
			t.Errorf("expected 1 sealed record, got %d", sealed)
		}
	})
}

func TestAuditLog_MutationsAreRecorded(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.AddRecord(sampleRecord("a1", "Audited")); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		if err := s.SaveSealedRecord(sampleSealed("a1")); err != nil {
			t.Fatalf("SaveSealedRecord failed: %v", err)
		}
		if err := s.DeleteRecord("a1"); err != nil {
			t.Fatalf("DeleteRecord failed: %v", err)
		}

		entries, err := s.GetAllAuditLogEntries()
		if err != nil {
			t.Fatalf("GetAllAuditLogEntries failed: %v", err)
		}

		var actions []string
		for _, e := range entries {
			actions = append(actions, e.Action)
		}
		// Newest first.
		want := []string{"DELETE_RECORD", "SEAL_RECORD", "ADD_RECORD"}
		if !reflect.DeepEqual(actions, want) {
			t.Errorf("unexpected audit actions: got %v, want %v", actions, want)
		}
		for _, e := range entries {
			if e.Username == "" {
				t.Errorf("expected username on audit entry %d", e.ID)
			}
			if e.Timestamp == "" {
				t.Errorf("expected timestamp on audit entry %d", e.ID)
			}
		}
	})
}

func TestLogAction_Direct(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := s.LogAction("CUSTOM_ACTION", "something happened"); err != nil {
			t.Fatalf("LogAction failed: %v", err)
		}
		entries, err := s.GetAllAuditLogEntries()
		if err != nil {
			t.Fatalf("GetAllAuditLogEntries failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		if entries[0].Action != "CUSTOM_ACTION" || entries[0].Details != "something happened" {
			t.Errorf("unexpected entry: %+v", entries[0])
		}
	})
}

func TestPackageLevelHelpers(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if err := AddRecord(sampleRecord("pkg-1", "Package Level")); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		got, err := GetRecord("pkg-1")
		if err != nil || got == nil {
			t.Fatalf("GetRecord failed: got %+v, err %v", got, err)
		}
		all, err := GetAllRecords()
		if err != nil || len(all) != 1 {
			t.Fatalf("GetAllRecords failed: got %d records, err %v", len(all), err)
		}
		count, err := CountRecords()
		if err != nil || count != 1 {
			t.Fatalf("CountRecords failed: got %d, err %v", count, err)
		}
		if err := DeleteRecord("pkg-1"); err != nil {
			t.Fatalf("DeleteRecord failed: %v", err)
		}
	})
}
