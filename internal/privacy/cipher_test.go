package privacy

import (
	"bytes"
	"testing"
)

// Fixed key and nonce keep these unit tests fast; key derivation has its own
// tests.
func cipherFixture() (key, nonce []byte) {
	return bytes.Repeat([]byte{0x11}, KeySize), bytes.Repeat([]byte{0x22}, NonceSize)
}

func TestSealOpenRoundTrip(t *testing.T) {
	key, nonce := cipherFixture()
	plaintext := []byte(`{"id":"c1"}`)

	ciphertext, tag, err := seal(key, nonce, plaintext)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(tag) != TagSize {
		t.Errorf("tag length = %d, want %d", len(tag), TagSize)
	}
	if len(ciphertext) != len(plaintext) {
		t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(plaintext))
	}

	got, err := open(key, nonce, ciphertext, tag)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	key, nonce := cipherFixture()
	ciphertext, tag, err := seal(key, nonce, []byte("community record payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	flip := func(b []byte, i int) []byte {
		out := append([]byte{}, b...)
		out[i] ^= 0x01
		return out
	}

	tests := []struct {
		name       string
		ciphertext []byte
		tag        []byte
	}{
		{"ciphertext bit flipped", flip(ciphertext, 0), tag},
		{"last ciphertext bit flipped", flip(ciphertext, len(ciphertext)-1), tag},
		{"tag bit flipped", ciphertext, flip(tag, 3)},
		{"truncated ciphertext", ciphertext[:len(ciphertext)-1], tag},
		{"tag too short", ciphertext, tag[:TagSize-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := open(key, nonce, tt.ciphertext, tt.tag); !IsAuthenticationError(err) {
				t.Errorf("got %v, want authentication error", err)
			}
		})
	}
}

func TestOpenWrongKeyFailsOpaquely(t *testing.T) {
	key, nonce := cipherFixture()
	ciphertext, tag, err := seal(key, nonce, []byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	other := bytes.Repeat([]byte{0x99}, KeySize)
	_, errWrongKey := open(other, nonce, ciphertext, tag)
	if !IsAuthenticationError(errWrongKey) {
		t.Fatalf("wrong key: got %v, want authentication error", errWrongKey)
	}

	// Same message for a completely different failure: no oracle.
	_, errTamper := open(key, nonce, ciphertext, bytes.Repeat([]byte{0x00}, TagSize))
	if !IsAuthenticationError(errTamper) {
		t.Fatalf("bad tag: got %v, want authentication error", errTamper)
	}
	if errWrongKey.Error() != errTamper.Error() {
		t.Errorf("failure modes distinguishable: %q vs %q", errWrongKey, errTamper)
	}
}

func TestSealRejectsBadGeometry(t *testing.T) {
	key, nonce := cipherFixture()
	if _, _, err := seal(key[:16], nonce, []byte("x")); err == nil {
		t.Error("seal accepted a short key")
	}
	if _, _, err := seal(key, nonce[:8], []byte("x")); err == nil {
		t.Error("seal accepted a short nonce")
	}
}
