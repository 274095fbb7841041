package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/colonylib/colony/pkg/config"
	"github.com/colonylib/colony/pkg/keystore"
	"github.com/colonylib/colony/pkg/log"
	"github.com/colonylib/colony/pkg/network"
	"github.com/colonylib/colony/pkg/podmanager"
)

// loadConfig resolves the --config flag (falling back to the platform
// default data directory when the file is absent or leaves data_dir blank).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		dir, err := config.DefaultDirStrategy.DefaultDataDir()
		if err != nil {
			return config.Config{}, err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	return config.Load(path, config.DefaultDirStrategy)
}

// openManager loads the config, decrypts the keystore with the password
// from --password (or $COLONY_PASSWORD), and opens a PodManager backed by
// the in-memory network fake. colony ships no real network transport; see
// pkg/network's package doc for why.
//
// The returned close func re-encrypts and saves the keystore before closing
// the graph database, so indices derived or retired during the command
// (AddPod, RemovePod, wallet changes) survive to the next invocation.
func openManager(cmd *cobra.Command) (*podmanager.PodManager, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("COLONY_PASSWORD")
	}
	if password == "" {
		return nil, nil, fmt.Errorf("colony: --password or $COLONY_PASSWORD is required")
	}

	ks, err := keystore.FromFile(cfg.KeystorePath(), password)
	if err != nil {
		return nil, nil, fmt.Errorf("colony: unlock keystore: %w", err)
	}

	net := network.NewMemClient()
	pm, err := podmanager.Open(context.Background(), ks, cfg.DataDir, cfg.GraphDB, net)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error {
		saveErr := ks.ToFile(cfg.KeystorePath(), password)
		if err := pm.Close(); err != nil {
			log.Logger.Warn().Err(err).Msg("close podmanager")
		}
		return saveErr
	}
	return pm, closeFn, nil
}
