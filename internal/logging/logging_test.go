package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_Console(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Console = &out

	l := New(cfg)
	l.Debug("hidden")
	l.Info("encoded node", zap.Int("faces", 12))
	require.NoError(t, l.Close())

	text := out.String()
	require.NotContains(t, text, "hidden")
	require.Contains(t, text, "encoded node")
	require.Contains(t, text, `"faces": 12`)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meco.log")
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.File = path
	cfg.Quiet = true

	l := New(cfg)
	l.Debug("cleaned indexed node", zap.Int("degenerate_faces", 2))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "DEBUG")
	require.Contains(t, string(data), "cleaned indexed node")
}

func TestNew_Quiet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quiet = true

	l := New(cfg)
	l.Error("nowhere")
	require.NoError(t, l.Close())
}
