// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// AccessLevel controls which roles may read a record.
type AccessLevel string

const (
	AccessPublic     AccessLevel = "public"
	AccessPrivate    AccessLevel = "private"
	AccessRestricted AccessLevel = "restricted"
)

// Valid reports whether the level is one of the recognized values. An
// unrecognized level is still accepted by the access evaluator (it is
// treated like restricted); Valid exists for input validation at the edges.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessPublic, AccessPrivate, AccessRestricted:
		return true
	}
	return false
}

// SensitivityLevel controls how aggressively a record is redacted.
type SensitivityLevel string

const (
	SensitivityLow    SensitivityLevel = "low"
	SensitivityMedium SensitivityLevel = "medium"
	SensitivityHigh   SensitivityLevel = "high"
)

// Valid reports whether the level is one of the recognized values.
func (s SensitivityLevel) Valid() bool {
	switch s {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return true
	}
	return false
}

// PrivacyPolicy is the complete set of knobs for one engine operation.
// Policies are values; once merged they are never modified.
type PrivacyPolicy struct {
	EncryptionEnabled bool             `json:"encryptionEnabled"`
	AccessLevel       AccessLevel      `json:"accessLevel"`
	SensitivityLevel  SensitivityLevel `json:"sensitivityLevel"`
	Anonymize         bool             `json:"anonymize"`
}

// DefaultPolicy returns the conservative baseline: encryption on, access
// restricted, medium sensitivity, anonymization on. Every operation starts
// from this and lays caller overrides on top.
func DefaultPolicy() PrivacyPolicy {
	return PrivacyPolicy{
		EncryptionEnabled: true,
		AccessLevel:       AccessRestricted,
		SensitivityLevel:  SensitivityMedium,
		Anonymize:         true,
	}
}

// PolicyOverrides carries the subset of policy fields a caller wants to
// change for a single operation. Nil fields inherit the default.
type PolicyOverrides struct {
	EncryptionEnabled *bool             `json:"encryptionEnabled,omitempty"`
	AccessLevel       *AccessLevel      `json:"accessLevel,omitempty"`
	SensitivityLevel  *SensitivityLevel `json:"sensitivityLevel,omitempty"`
	Anonymize         *bool             `json:"anonymize,omitempty"`
}

// Merge lays the overrides over the default policy and returns the result.
// A nil receiver is valid and yields the default unchanged.
func (o *PolicyOverrides) Merge() PrivacyPolicy {
	p := DefaultPolicy()
	if o == nil {
		return p
	}
	if o.EncryptionEnabled != nil {
		p.EncryptionEnabled = *o.EncryptionEnabled
	}
	if o.AccessLevel != nil {
		p.AccessLevel = *o.AccessLevel
	}
	if o.SensitivityLevel != nil {
		p.SensitivityLevel = *o.SensitivityLevel
	}
	if o.Anonymize != nil {
		p.Anonymize = *o.Anonymize
	}
	return p
}
