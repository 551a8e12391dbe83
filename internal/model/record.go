package model

import "fmt"

// CommunityRecord is a community-contributed record: a named piece of
// content plus optional cultural context supplied by the contributor.
// This is the core entity the privacy engine protects.
type CommunityRecord struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Content         string         `json:"content"`
	CulturalContext map[string]any `json:"culturalContext,omitempty"`
}

// String returns the id/name representation used in logs and lists.
func (r CommunityRecord) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

// Clone returns a copy of the record with its own cultural context map.
// Transformations operate on clones so callers never see their input change.
func (r CommunityRecord) Clone() CommunityRecord {
	out := r
	if r.CulturalContext != nil {
		ctx := make(map[string]any, len(r.CulturalContext))
		for k, v := range r.CulturalContext {
			ctx[k] = v
		}
		out.CulturalContext = ctx
	}
	return out
}
