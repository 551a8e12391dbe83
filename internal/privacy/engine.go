// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lorekeeper/lorekeeper/internal/model"
)

// Logger is the minimal logging surface the engine uses. A nil logger is
// valid; logging never changes what an operation returns.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Engine is the façade over key derivation, authenticated encryption,
// envelope coding, redaction and access control. An Engine holds no mutable
// state and may be shared freely across goroutines; the only shared resource
// is the randomness source, which must be safe for concurrent reads
// (crypto/rand is).
type Engine struct {
	rand io.Reader
	log  Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand substitutes the randomness source used for salts and nonces.
// Intended for tests; production engines should keep crypto/rand.
func WithRand(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// WithLogger attaches a logger to the engine.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an Engine backed by crypto/rand unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{rand: rand.Reader}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		e.rand = rand.Reader
	}
	return e
}

// Encrypt seals a record under a passphrase and returns the envelope string.
// The effective policy is the default overlaid with the caller's overrides;
// when it disables encryption the engine refuses with ErrEncryptionDisabled
// rather than produce plaintext output. Every call draws a fresh salt and
// nonce and derives the key anew, so encrypting the same record twice yields
// different envelopes. Derived keys are never cached.
func (e *Engine) Encrypt(record model.CommunityRecord, passphrase string, overrides *model.PolicyOverrides) (string, error) {
	policy := overrides.Merge()
	if !policy.EncryptionEnabled {
		return "", ErrEncryptionDisabled
	}

	plaintext, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to serialize record: %w", err)
	}

	salt, err := e.randomBytes(SaltSize)
	if err != nil {
		return "", err
	}
	nonce, err := e.randomBytes(NonceSize)
	if err != nil {
		return "", err
	}

	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return "", err
	}
	ciphertext, tag, err := seal(key, nonce, plaintext)
	if err != nil {
		return "", err
	}

	env := Envelope{Salt: salt, Nonce: nonce, Tag: tag, Ciphertext: ciphertext}
	e.debugf("sealed record %s (%d ciphertext bytes)", record.ID, len(ciphertext))
	return env.Encode(), nil
}

// Decrypt opens an envelope string with a passphrase and returns the record
// it contains. Malformed envelopes fail with *EnvelopeFormatError before any
// cryptography runs; everything that goes wrong after key derivation is an
// opaque *AuthenticationError.
func (e *Engine) Decrypt(envelope, passphrase string) (*model.CommunityRecord, error) {
	env, err := DecodeEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(passphrase, env.Salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := open(key, env.Nonce, env.Ciphertext, env.Tag)
	if err != nil {
		e.debugf("envelope failed to authenticate")
		return nil, err
	}

	var record model.CommunityRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record payload: %w", err)
	}
	e.debugf("opened record %s", record.ID)
	return &record, nil
}

// ApplyPolicy redacts a record according to the merged policy. The input is
// never modified; see the package-level ApplyPolicy for the rules.
func (e *Engine) ApplyPolicy(record model.CommunityRecord, overrides *model.PolicyOverrides) model.CommunityRecord {
	return ApplyPolicy(record, overrides.Merge())
}

// CheckAccess reports whether a role may read records under the merged
// policy.
func (e *Engine) CheckAccess(role string, overrides *model.PolicyOverrides) bool {
	policy := overrides.Merge()
	allowed := CheckAccess(role, policy)
	e.debugf("access %s for role %q at level %q", verdict(allowed), role, policy.AccessLevel)
	return allowed
}

func (e *Engine) randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(e.rand, b); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}
	return b, nil
}

func (e *Engine) debugf(format string, v ...interface{}) {
	if e.log != nil {
		e.log.Debugf(format, v...)
	}
}

func verdict(allowed bool) string {
	if allowed {
		return "granted"
	}
	return "denied"
}
