package logging

import (
	"testing"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"debug text", LevelDebug, FormatText},
		{"info json", LevelInfo, FormatJSON},
		{"warn text", LevelWarn, FormatText},
		{"error json", LevelError, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Fatal("GetLogger() = nil after InitLogger")
			}
		})
	}
}

func TestNewQueryID(t *testing.T) {
	a := NewQueryID()
	b := NewQueryID()
	if a == "" || b == "" {
		t.Fatal("NewQueryID() returned empty ID")
	}
	if a == b {
		t.Errorf("NewQueryID() returned duplicate ID %q", a)
	}
}

func TestForQuery(t *testing.T) {
	InitLogger(LevelWarn, FormatText)
	if ForQuery(NewQueryID(), "SELECT * FROM apples") == nil {
		t.Fatal("ForQuery() = nil")
	}
}
