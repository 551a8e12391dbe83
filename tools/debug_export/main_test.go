// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

// captureOutput redirects stdout and stderr while fn runs and returns
// everything written. Stderr is included because the log package writes
// there.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	savedOut, savedErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w
	defer func() {
		os.Stdout, os.Stderr = savedOut, savedErr
	}()

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()
	_ = w.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out draining captured output")
	}
	return buf.String()
}

func TestMainPrintsSeededSummary(t *testing.T) {
	out := captureOutput(t, main)
	if out == "" {
		t.Fatal("expected main to print a summary")
	}
	for _, want := range []string{"records:", "sealed envelopes:", "audit entries:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}
