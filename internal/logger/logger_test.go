package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithValidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json to stdout", config: Config{Level: "debug", Format: "json", Output: "stdout"}},
		{name: "text to stderr", config: Config{Level: "info", Format: "text", Output: "stderr"}},
		{name: "defaults", config: Config{}},
		{name: "invalid level", config: Config{Level: "verbose", Format: "text", Output: "stdout"}, wantErr: true},
		{name: "invalid format", config: Config{Level: "info", Format: "xml", Output: "stdout"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestNew_WithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sweeper.log")
	log, err := New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("hello", Field{Key: "answer", Value: 42})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"answer":42`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"WARN", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, true},
		{"trace", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		level, ok := parseLevel(tt.input)
		assert.Equal(t, tt.want, level, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}
}

func TestError_AttachesErrorField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.log")
	log, err := New(Config{Level: "info", Format: "text", Output: path})
	require.NoError(t, err)

	log.Error("something failed", os.ErrNotExist)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "file does not exist"))
}

func TestWith_CarriesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with.log")
	log, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.With(Field{Key: "run_id", Value: "abc"}).Info("started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"abc"`)
}
