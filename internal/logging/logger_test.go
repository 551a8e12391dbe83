package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// swapLogger points L at a buffer-backed logger for the duration of a test.
func swapLogger(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	prev := L
	L = clog.New(buf)
	t.Cleanup(func() { L = prev })
}

func TestHelpersWriteFormattedMessages(t *testing.T) {
	var buf bytes.Buffer
	swapLogger(t, &buf)
	L.SetLevel(clog.DebugLevel)

	Debugf("opened vault %s", "main")
	Infof("sealed %d records", 3)
	Warnf("missing context")
	Errorf("store: %v", "broken")

	out := buf.String()
	for _, want := range []string{"opened vault main", "sealed 3 records", "missing context", "store: broken"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %s", want, out)
		}
	}
}

func TestSetDebugGatesDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	swapLogger(t, &buf)

	SetDebug(false)
	Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output emitted while disabled: %s", buf.String())
	}

	SetDebug(true)
	Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug output missing while enabled: %s", buf.String())
	}
}
