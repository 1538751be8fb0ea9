package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With(String("client", "abc"))

	log.Warn("stream lost", Int("attempt", 2), Error(errors.New("eof")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["client"] != "abc" || fields["attempt"] != int64(2) || fields["error"] != "eof" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level  string
		pretty bool
		debug  bool
		info   bool
	}{
		{"debug", false, true, true},
		{"warn", false, false, false},
		{"", false, false, true},
		{"bogus", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, tt.pretty).(*loggerImpl)
			if got := l.base.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := l.base.Core().Enabled(zapcore.InfoLevel); got != tt.info {
				t.Errorf("info enabled = %v, want %v", got, tt.info)
			}
		})
	}
}
