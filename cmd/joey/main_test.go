package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/sensor"
)

const testConfig = `
translate:
  backend: none
detect:
  enabled: false
sensors:
  backend: none
logging:
  level: error
`

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "joey dev\n", execute(t, "", "version"))
}

func TestClassify(t *testing.T) {
	out := execute(t, "", "classify", "What", "time", "is", "it?")
	assert.Contains(t, out, "utterance:  what time is it?")
	assert.Contains(t, out, "accepted:   tell_time")
}

func TestRun_ConsoleConversation(t *testing.T) {
	out := execute(t, "hindi mode on\ngoodbye\n", "run")

	assert.Contains(t, out, "Joey (en): ")
	assert.Contains(t, out, "Joey (hi): ")
	assert.Equal(t, 2, strings.Count(out, "> "))
}

func TestNewSensors(t *testing.T) {
	_, ok := newSensors(config.SensorsConfig{Backend: "none"}).(sensor.None)
	assert.True(t, ok)

	_, ok = newSensors(config.SensorsConfig{Backend: "simulated"}).(*sensor.Simulated)
	assert.True(t, ok)

	_, ok = newSensors(config.SensorsConfig{Backend: "simulated", IPInfo: config.IPInfoConfig{Enabled: true}}).(*sensor.IPInfo)
	assert.True(t, ok)
}
