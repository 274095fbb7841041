package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaultsUnderStrategy(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(filepath.Join(root, "missing.yaml"), FixedDirStrategy{Dir: filepath.Join(root, "data")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "data"), cfg.DataDir)
	require.Equal(t, filepath.Join(root, "data", "graph.db"), cfg.GraphDB)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")

	cfg := Config{DataDir: filepath.Join(root, "custom"), GraphDB: "custom.db", LogLevel: "debug", LogJSON: true}
	require.NoError(t, Save(path, cfg))

	got, err := Load(path, FixedDirStrategy{Dir: filepath.Join(root, "unused")})
	require.NoError(t, err)
	require.Equal(t, cfg.DataDir, got.DataDir)
	require.Equal(t, filepath.Join(cfg.DataDir, "custom.db"), got.GraphDB)
	require.Equal(t, "debug", got.LogLevel)
	require.True(t, got.LogJSON)
}

func TestKeystorePathUnderDataDir(t *testing.T) {
	cfg := Config{DataDir: "/tmp/colony"}
	require.Equal(t, "/tmp/colony/keystore.json.enc", cfg.KeystorePath())
}
