// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import "github.com/lorekeeper/lorekeeper/internal/model"

// AnonymousName replaces the record name when a policy anonymizes.
const AnonymousName = "Anonymous Community"

// maskedKey is the single key left in a masked cultural context.
const maskedKey = "masked"

// ApplyPolicy returns a copy of the record with the policy's redactions
// applied. The input record is never modified.
//
// Two transformations run in fixed order:
//  1. High sensitivity replaces a present cultural context with the marker
//     {"masked": true}. Records without a cultural context gain nothing; at
//     low or medium sensitivity the context passes through untouched.
//  2. Anonymization replaces the record name with AnonymousName, whatever
//     the name was before.
//
// Both transformations are idempotent, so redacting an already-redacted
// record is a no-op.
func ApplyPolicy(record model.CommunityRecord, policy model.PrivacyPolicy) model.CommunityRecord {
	out := record.Clone()
	if policy.SensitivityLevel == model.SensitivityHigh && out.CulturalContext != nil {
		out.CulturalContext = map[string]any{maskedKey: true}
	}
	if policy.Anonymize {
		out.Name = AnonymousName
	}
	return out
}
