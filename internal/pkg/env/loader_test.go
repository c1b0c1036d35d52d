package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/log"
)

func TestLoadDotEnv(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	dir := t.TempDir()

	// OS envs take precedence over files
	osEnvs := Empty()
	osEnvs.Set(`FOO1`, `BAR1`)
	osEnvs.Set(`OS_ONLY`, `123`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("FOO1=BAR2\nFOO2=BAR2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOO1=BAZ\nFOO3=BAR3\n"), 0o600))

	envs := LoadDotEnv(logger, osEnvs, []string{dir})

	assert.Equal(t, map[string]string{
		"OS_ONLY": "123",
		"FOO1":    "BAR1",
		"FOO2":    "BAR2",
		"FOO3":    "BAR3",
	}, envs.ToMap())

	// Both files reported
	messages := logger.InfoMessages()
	assert.Contains(t, messages, ".env.local")
	assert.Contains(t, messages, "Loaded env file")
}

func TestLoadDotEnv_Invalid(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`A="unclosed`), 0o600))

	envs := LoadDotEnv(logger, Empty(), []string{dir})

	assert.Empty(t, envs.ToMap())
	assert.Contains(t, logger.WarnMessages(), "cannot parse env file")
}

func TestLoadEnvString(t *testing.T) {
	t.Parallel()
	envs, err := LoadEnvString("A=B\nC=D\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "B", "C": "D"}, envs.ToMap())
}

func TestMap_MergeAndPrecedence(t *testing.T) {
	t.Parallel()
	m := Empty()
	m.Set("key1", "old")
	other := FromMap(map[string]string{"KEY1": "new", "KEY2": "added"})

	m.Merge(other, false)
	assert.Equal(t, "old", m.Get("KEY1"))
	assert.Equal(t, "added", m.Get("key2"))

	m.Merge(other, true)
	assert.Equal(t, "new", m.Get("KEY1"))
}
