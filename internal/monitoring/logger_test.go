package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func TestSetLoggerCapturesOutput(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	Logf("session %s started for %s", "abc", "person-1")

	if len(lines) != 1 || !strings.Contains(lines[0], "session abc started") {
		t.Errorf("captured lines = %v", lines)
	}
}

func TestSetLoggerNilInstallsNoOp(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf must never be nil")
	}
	// Must not panic.
	Logf("dropped %d", 1)
}
