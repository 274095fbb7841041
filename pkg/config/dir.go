package config

import (
	"os"
	"path/filepath"
)

// DirStrategy resolves the root directory colony uses when the
// configuration leaves data_dir blank. Pulling this behind an interface keeps config.Load
// testable against an arbitrary root instead of the real $HOME/$XDG_CONFIG_HOME.
type DirStrategy interface {
	// DefaultDataDir returns the platform-default root for colony's
	// data directory, creating any missing parent directories.
	DefaultDataDir() (string, error)
}

// osDirStrategy is the production DirStrategy, rooted at the OS's
// standard per-user configuration directory.
type osDirStrategy struct{}

// DefaultDirStrategy is the DirStrategy used when none is supplied to Load.
var DefaultDirStrategy DirStrategy = osDirStrategy{}

func (osDirStrategy) DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "colony")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// FixedDirStrategy is a DirStrategy that always resolves to a predetermined
// path, used by tests to avoid touching the real user config directory.
type FixedDirStrategy struct {
	Dir string
}

func (f FixedDirStrategy) DefaultDataDir() (string, error) {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return "", err
	}
	return f.Dir, nil
}
