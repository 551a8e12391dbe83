// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Envelope holds the four binary components of a sealed record. Its string
// form is the engine's only wire format:
//
//	hex(salt):hex(nonce):hex(tag):hex(ciphertext)
//
// Lowercase hex, exactly four fields, no framing beyond the colons.
type Envelope struct {
	Salt       []byte
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

const envelopeFields = 4

// Encode renders the envelope in its canonical string form.
func (e Envelope) Encode() string {
	parts := []string{
		hex.EncodeToString(e.Salt),
		hex.EncodeToString(e.Nonce),
		hex.EncodeToString(e.Tag),
		hex.EncodeToString(e.Ciphertext),
	}
	return strings.Join(parts, ":")
}

// DecodeEnvelope parses an envelope string. Decoding is strict: exactly four
// non-empty fields, each valid hex, with the salt, nonce and tag at their
// fixed sizes. Any deviation yields an *EnvelopeFormatError and no partial
// result. Decoding performs no authentication; a well-formed envelope can
// still fail to open.
func DecodeEnvelope(s string) (*Envelope, error) {
	parts := strings.Split(s, ":")
	if len(parts) != envelopeFields {
		return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("expected %d fields, got %d", envelopeFields, len(parts))}
	}

	names := [envelopeFields]string{"salt", "nonce", "tag", "ciphertext"}
	decoded := make([][]byte, envelopeFields)
	for i, part := range parts {
		if part == "" {
			return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("%s field is empty", names[i])}
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("%s field is not valid hex", names[i])}
		}
		decoded[i] = b
	}

	env := &Envelope{Salt: decoded[0], Nonce: decoded[1], Tag: decoded[2], Ciphertext: decoded[3]}
	if len(env.Salt) != SaltSize {
		return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("salt must be %d bytes, got %d", SaltSize, len(env.Salt))}
	}
	if len(env.Nonce) != NonceSize {
		return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("nonce must be %d bytes, got %d", NonceSize, len(env.Nonce))}
	}
	if len(env.Tag) != TagSize {
		return nil, &EnvelopeFormatError{Reason: fmt.Sprintf("tag must be %d bytes, got %d", TagSize, len(env.Tag))}
	}
	return env, nil
}
