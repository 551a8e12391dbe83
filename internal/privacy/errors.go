// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import (
	"errors"
	"fmt"
)

// KeyDerivationError reports that a key could not be derived, either because
// the inputs were invalid or because the underlying primitive failed.
type KeyDerivationError struct {
	Reason string // Human-readable error message
	Err    error  // Underlying error, if any
}

func (e *KeyDerivationError) Error() string {
	return fmt.Sprintf("key derivation error: %s", e.Reason)
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a failed decryption. It intentionally carries
// no detail: a wrong passphrase, altered ciphertext, an altered tag and
// truncated input all produce the same error, so callers cannot use it as
// an oracle for which aspect failed.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "authentication failed: envelope may be corrupted or tampered with"
}

// EnvelopeFormatError reports a malformed envelope string. Decoding is
// strict; nothing is salvaged from an envelope that fails any check.
type EnvelopeFormatError struct {
	Reason string // Human-readable error message
}

func (e *EnvelopeFormatError) Error() string {
	return fmt.Sprintf("invalid envelope: %s", e.Reason)
}

// ErrEncryptionDisabled is returned by Encrypt when the effective policy has
// encryption switched off. The engine refuses to emit plaintext where an
// envelope is expected; callers that want an unencrypted representation must
// serialize the record themselves.
var ErrEncryptionDisabled = errors.New("encryption disabled by policy")

// IsKeyDerivationError checks if an error is a key derivation error.
func IsKeyDerivationError(err error) bool {
	var ke *KeyDerivationError
	return errors.As(err, &ke)
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsEnvelopeFormatError checks if an error is an envelope format error.
func IsEnvelopeFormatError(err error) bool {
	var fe *EnvelopeFormatError
	return errors.As(err, &fe)
}
