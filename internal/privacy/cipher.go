// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const (
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
)

// newAEAD builds the AES-256-GCM primitive for a derived key.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("AES-256 requires a %d-byte key, got %d bytes", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// seal encrypts plaintext under key and nonce and returns the ciphertext and
// authentication tag separately. The tag covers the ciphertext and nonce, so
// flipping a single bit in either is detected on open.
func seal(key, nonce, plaintext []byte) (ciphertext, tag []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}
	if len(nonce) != NonceSize {
		return nil, nil, fmt.Errorf("nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}

	// Seal appends the tag to the ciphertext; split them for the envelope.
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	n := len(sealed) - TagSize
	return sealed[:n], sealed[n:], nil
}

// open decrypts ciphertext under key and nonce and verifies the tag. Every
// failure mode collapses into the same opaque *AuthenticationError: callers
// learn that the envelope did not authenticate, and nothing else.
func open(key, nonce, ciphertext, tag []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, &AuthenticationError{}
	}
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, &AuthenticationError{}
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &AuthenticationError{}
	}
	return plaintext, nil
}
