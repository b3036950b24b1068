package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "levels", cfg.Levels)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Rules.RetryOnDeath)
	assert.True(t, cfg.Rules.ClearActivationOnMoodRevert)
	assert.False(t, cfg.Rules.ExitRequiresKeys)
	assert.Empty(t, cfg.Feed.Addr)
}

func TestParse_OverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
start_level: 2
debug: true
rules:
  exit_requires_keys: true
feed:
  addr: ":8081"
`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.StartLevel)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Rules.ExitRequiresKeys)
	assert.True(t, cfg.Rules.RetryOnDeath, "unset rule keeps its default")
	assert.Equal(t, "levels", cfg.Levels)
	assert.Equal(t, ":8081", cfg.Feed.Addr)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "colour: blue\n"},
		{"bad type", "start_level: first\n"},
		{"negative start", "start_level: -1\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"empty levels", "levels: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"), false)
	assert.Error(t, err)

	path := filepath.Join(dir, "moodgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels: content\nlog:\n  level: debug\n"), 0o644))
	cfg, err = Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Levels)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}
