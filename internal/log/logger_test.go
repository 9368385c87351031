package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHonorsLevelAndFormat(t *testing.T) {
	logger := New("warn", FormatJSON)
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", logger.GetLevel())
	}

	logger = New("debug", FormatConsole)
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", logger.GetLevel())
	}

	// Unknown format degrades to console rather than failing.
	logger = New("info", "xml")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %v", logger.GetLevel())
	}
}
