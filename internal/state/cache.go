// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package state holds transient session state shared between surfaces,
// most importantly the passphrase that is entered once and then reused by
// later unseal prompts in the same run.
package state

import "sync"

// PassphraseCache is the process-wide mailbox for the session passphrase.
// It works on byte slices rather than strings so the secret can be wiped.
var PassphraseCache = &passphraseMailbox{}

type passphraseMailbox struct {
	buf []byte
	mu  sync.RWMutex
}

// Set replaces the cached passphrase with a copy of secret.
func (c *passphraseMailbox) Set(secret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if secret == nil {
		c.buf = nil
		return
	}
	// Copy, so the cache never aliases memory the caller may reuse.
	c.buf = append([]byte(nil), secret...)
}

// Get hands out a copy of the cached passphrase, or nil when the cache is
// empty. Every caller gets its own copy, so wiping one does not disturb
// concurrent readers. Callers zero their copy once they are done with it.
func (c *passphraseMailbox) Get() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.buf == nil {
		return nil
	}
	return append([]byte(nil), c.buf...)
}

// Clear zeroes the cached passphrase and releases it.
func (c *passphraseMailbox) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.buf = nil
}
