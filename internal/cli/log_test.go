package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
		info  bool
	}{
		{LogInfo, false, true},
		{LogDebug, true, true},
		{log.WarnLevel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)

			logger.Debug("placing members")
			if got := strings.Contains(buf.String(), "placing members"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			logger.Info("layout done")
			if got := strings.Contains(buf.String(), "layout done"); got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("Seeded 4 people")

	out := buf.String()
	if !strings.Contains(out, "Seeded 4 people (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q", out)
	}
}

func TestProgressFamily(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Smit", "Laid out Smit ("},
		{"", "Laid out family ("},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			newProgress(newLogger(&buf, LogInfo)).family("Laid out", tt.name, 4, 2, 1)

			out := buf.String()
			for _, s := range []string{tt.want, "people=4", "marriages=2", "children=1"} {
				if !strings.Contains(out, s) {
					t.Errorf("output %q missing %q", out, s)
				}
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context does not fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
}
