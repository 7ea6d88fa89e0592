package fixtures

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ChainConfigPath returns the path of a fixture chain config file.
func ChainConfigPath(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join(fixturesDir(), "chains", filename)
	_, err := os.Stat(path)
	require.NoError(t, err, "missing fixture chain config: %s", filename)
	return path
}

// LoadChainConfig loads and validates a fixture chain config.
func LoadChainConfig(t *testing.T, filename string) config.ChainConfig {
	t.Helper()
	cc, err := config.LoadChainConfig(ChainConfigPath(t, filename))
	require.NoError(t, err, "failed to load fixture chain config: %s", filename)
	return cc
}

// CopyChainConfig copies a fixture chain config into dir as chains.json and
// returns the new path.
func CopyChainConfig(t *testing.T, filename, dir string) string {
	t.Helper()
	data, err := os.ReadFile(ChainConfigPath(t, filename))
	require.NoError(t, err)
	dst := filepath.Join(dir, "chains.json")
	require.NoError(t, os.WriteFile(dst, data, 0o600))
	return dst
}
