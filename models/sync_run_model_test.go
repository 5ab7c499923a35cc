package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunError_ShortMessageUnchanged(t *testing.T) {
	if got := TruncateRunError("boom"); got != "boom" {
		t.Errorf("Expected message unchanged, got %q", got)
	}
	exact := strings.Repeat("x", MaxRunErrorLength)
	if got := TruncateRunError(exact); got != exact {
		t.Errorf("Expected message of exactly %d bytes unchanged", MaxRunErrorLength)
	}
}

func TestTruncateRunError_CapsLongMessage(t *testing.T) {
	got := TruncateRunError(strings.Repeat("x", MaxRunErrorLength+100))
	if len(got) != MaxRunErrorLength {
		t.Errorf("Expected %d bytes, got %d", MaxRunErrorLength, len(got))
	}
}

func TestTruncateRunError_NeverSplitsARune(t *testing.T) {
	// A two-byte rune straddling the byte cap must be dropped whole.
	msg := strings.Repeat("x", MaxRunErrorLength-1) + "é" + strings.Repeat("y", 50)
	got := TruncateRunError(msg)
	if !utf8.ValidString(got) {
		t.Errorf("Truncated message is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != MaxRunErrorLength-1 {
		t.Errorf("Expected %d bytes after backing up to the rune boundary, got %d", MaxRunErrorLength-1, len(got))
	}
}
