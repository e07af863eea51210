package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.DebugObj("query matched several records", "query_result", map[string]any{"records": 2})
	log.WarnObj("service returned non-success status", "response", map[string]any{"status": 503})

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	entry := logs.All()[1]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("unexpected level %v", entry.Level)
	}
	field, ok := entry.ContextMap()["response"].(map[string]any)
	if !ok || field["status"] != 503 {
		t.Fatalf("unexpected field %#v", entry.ContextMap()["response"])
	}
}

func TestNewWithNilReturnsNop(t *testing.T) {
	if _, ok := New(nil).(NopLogger); !ok {
		t.Fatalf("expected NopLogger for nil zap logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}
