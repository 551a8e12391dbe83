package main

import (
	"fmt"

	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/internal/privacy"
)

func main() {
	dsn := "file:debprobe?mode=memory&cache=shared"
	i18n.Init("en")
	if err := db.InitDB("sqlite", dsn); err != nil {
		panic(err)
	}

	first := model.CommunityRecord{
		ID:              "rec-1",
		Name:            "Harvest Song",
		Content:         "Sung at the first harvest of the season.",
		CulturalContext: map[string]any{"season": "autumn"},
	}
	if err := db.AddRecord(first); err != nil {
		panic(err)
	}
	if err := db.AddRecord(model.CommunityRecord{
		ID:      "rec-2",
		Name:    "Naming Ceremony",
		Content: "Names are given at the river mouth.",
	}); err != nil {
		panic(err)
	}

	// Seal one record so the sealed path shows up in the dump.
	envelope, err := privacy.New().Encrypt(first, "debug-passphrase", nil)
	if err != nil {
		panic(err)
	}
	if err := db.SaveSealedRecord(model.SealedRecord{
		RecordID: "rec-1",
		Envelope: envelope,
		Policy:   model.DefaultPolicy(),
	}); err != nil {
		panic(err)
	}

	records, err := db.GetAllRecords()
	if err != nil {
		panic(err)
	}
	fmt.Printf("records: %d\n", len(records))
	for _, r := range records {
		fmt.Printf("record: %+v\n", r)
	}

	sealed, err := db.GetAllSealedRecords()
	if err != nil {
		panic(err)
	}
	fmt.Printf("sealed envelopes: %d\n", len(sealed))
	for _, s := range sealed {
		fmt.Printf("sealed: record=%s access=%s envelope_len=%d\n", s.RecordID, s.Policy.AccessLevel, len(s.Envelope))
	}

	entries, err := db.GetAllAuditLogEntries()
	if err != nil {
		panic(err)
	}
	fmt.Printf("audit entries: %d\n", len(entries))
}
