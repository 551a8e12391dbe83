package model

import "time"

// SealedRecord is a stored encryption envelope for a community record,
// together with the policy snapshot it was sealed under. The envelope is
// opaque text as far as storage is concerned; only the privacy engine can
// open it.
type SealedRecord struct {
	RecordID  string        `json:"record_id"`
	Envelope  string        `json:"envelope"`
	Policy    PrivacyPolicy `json:"policy"`
	CreatedAt time.Time     `json:"created_at"`
}
