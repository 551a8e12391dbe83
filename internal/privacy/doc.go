// Package privacy implements the privacy and access-control engine for
// community records.
//
// The engine turns a record into a tamper-evident encrypted envelope using a
// passphrase-derived key (Argon2id into AES-256-GCM), reverses the transform
// when presented with the correct passphrase, applies policy-driven redaction
// and anonymization, and answers role-based access questions.
//
// All operations are deterministic given their inputs plus the injected
// randomness source, hold no shared mutable state, and are safe for
// concurrent use. Failures are reported through a small set of structured
// error types:
//   - *KeyDerivationError for invalid key-derivation inputs,
//   - *EnvelopeFormatError for malformed envelope strings,
//   - *AuthenticationError for any decryption failure. The authentication
//     error deliberately carries no detail; a wrong passphrase and tampered
//     ciphertext are indistinguishable to callers.
//
// The envelope wire format is the engine's only serialization concern; how
// envelopes are stored or transported is up to the caller.
package privacy
