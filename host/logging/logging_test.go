package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig = Config{}
	output = &buf
	mutex.Unlock()

	t.Cleanup(func() {
		mutex.Lock()
		output = os.Stderr
		mutex.Unlock()
	})
	return &buf
}

func TestModuleLevelOverride(t *testing.T) {
	reset(t)

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"client": "debug",
			"sim":    "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"client", true, true, true},
		{"sim", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			assert.Equal(t, tt.wantDebug, handler.Enabled(ctx, slog.LevelDebug), "debug")
			assert.Equal(t, tt.wantInfo, handler.Enabled(ctx, slog.LevelInfo), "info")
			assert.Equal(t, tt.wantWarn, handler.Enabled(ctx, slog.LevelWarn), "warn")
		})
	}
}

func TestInitializeUpdatesExistingLoggers(t *testing.T) {
	reset(t)

	before := GetLogger("serial")
	require.False(t, before.Handler().Enabled(context.Background(), slog.LevelDebug))

	Initialize(Config{Level: "debug"})

	after := GetLogger("serial")
	assert.True(t, after.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestJSONFormatWritesModule(t *testing.T) {
	buf := reset(t)

	Initialize(Config{Level: "info", Format: "json"})
	GetLogger("client").Info("sent", "command", "ON")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"module":"client"`)
	assert.Contains(t, out, `"command":"ON"`)
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		assert.True(t, ValidLevel(level), level)
	}
	assert.False(t, ValidLevel("loud"))
	assert.Nil(t, parseLevel(""))
}
