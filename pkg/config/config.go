// Package config loads colony's on-disk YAML configuration: the data
// directory layout, the network endpoint to dial, and logging verbosity.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the parsed shape of colony's config.yaml.
type Config struct {
	// DataDir is the root directory for the keystore file, the update
	// queue, and the per-pointer/per-scratchpad local cache files. Empty
	// means "resolve via DirStrategy".
	DataDir string `yaml:"data_dir"`

	// GraphDB is the bbolt file backing the GraphStore, resolved relative
	// to DataDir when not absolute.
	GraphDB string `yaml:"graph_db"`

	// Network is the endpoint the configured network.Client dials. The
	// only client this module ships is the in-memory fake used by tests,
	// so this field is carried through for a future real client but
	// otherwise unused.
	Network string `yaml:"network"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// defaults mirrors a freshly initialized config before Load overlays the
// file's contents and DirStrategy resolution on top.
func defaults() Config {
	return Config{
		GraphDB:  "graph.db",
		LogLevel: "info",
	}
}

// Load reads path (if it exists) and overlays it onto a default
// configuration, resolving DataDir against strategy when the file leaves
// it blank. A missing file is not an error; it yields pure defaults.
func Load(path string, strategy DirStrategy) (Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if cfg.DataDir == "" {
		if strategy == nil {
			strategy = DefaultDirStrategy
		}
		dir, err := strategy.DefaultDataDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	if !filepath.IsAbs(cfg.GraphDB) {
		cfg.GraphDB = filepath.Join(cfg.DataDir, cfg.GraphDB)
	}
	return cfg, nil
}

// KeystorePath is the encrypted keystore file's fixed location under DataDir.
func (c Config) KeystorePath() string {
	return filepath.Join(c.DataDir, "keystore.json.enc")
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
