package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	first := Init(Options{Level: "debug", Output: &buf})
	second := Init(Options{Level: "error", Output: &bytes.Buffer{}})

	if first.GetLevel() != second.GetLevel() {
		t.Fatalf("second Init changed the singleton")
	}

	log := Get()
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("log did not reach the first writer: %q", buf.String())
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer Reset()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic from Get before Init")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.InfoLevel,
		"VERBOSE?": zerolog.InfoLevel,
		" Debug ":  zerolog.DebugLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
