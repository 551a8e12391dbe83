// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Key derivation and envelope geometry. These sizes are part of the envelope
// wire format; changing them invalidates every existing envelope.
const (
	// SaltSize is the length of the per-envelope key derivation salt.
	SaltSize = 16
	// KeySize is the length of the derived AES-256 key.
	KeySize = 32
)

// Argon2id cost parameters. Memory-hardness is the point: brute-forcing a
// passphrase must stay expensive even on GPU rigs.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
)

// DeriveKey stretches a passphrase into a KeySize-byte encryption key using
// Argon2id with the salt. The derivation is deterministic: the same
// passphrase and salt always yield the same key. Each derivation costs
// real CPU and memory; callers doing bulk work pay that cost per call.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, &KeyDerivationError{Reason: "passphrase cannot be empty"}
	}
	if len(salt) != SaltSize {
		return nil, &KeyDerivationError{Reason: fmt.Sprintf("salt must be %d bytes, got %d", SaltSize, len(salt))}
	}

	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize)
	if len(key) != KeySize {
		return nil, &KeyDerivationError{Reason: fmt.Sprintf("derived key has %d bytes, want %d", len(key), KeySize)}
	}
	return key, nil
}
