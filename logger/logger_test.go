package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestNew_ConfigValues(t *testing.T) {
	clearEnv(t)
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("entity", 3).Debug("moved")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "moved", entry["msg"])
	assert.EqualValues(t, 3, entry["entity"])
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	log := New("debug", "text", &buf)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Warn("careful")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNew_BadLevelFallsBack(t *testing.T) {
	clearEnv(t)
	var buf bytes.Buffer
	log := New("loud", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
