package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colonylib/colony/pkg/config"
	"github.com/colonylib/colony/pkg/keystore"
	"github.com/colonylib/colony/pkg/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "colony",
	Short: "colony manages user-owned pods on a content-addressed network",
	Long: `colony is a local agent for the colony network: it keeps a
key store, an update queue, and a quad store for a set of pods you
own, and drives their upload, refresh, and cross-reference crawl.`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml (defaults to the platform config directory)")
	rootCmd.PersistentFlags().String("password", "", "keystore password (falls back to $COLONY_PASSWORD)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(podCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(walletCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOut})
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "generate a new keystore and write the default config",
	Long: `init creates a fresh 24-word mnemonic, derives the
configuration pod's pointer and scratchpad keys, and writes an
encrypted keystore plus a config.yaml under the resolved data
directory. The mnemonic is printed once; it is not recoverable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("COLONY_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("colony init: --password or $COLONY_PASSWORD is required")
		}

		mnemonic, _ := cmd.Flags().GetString("mnemonic")
		var ks *keystore.KeyStore
		if mnemonic == "" {
			ks, mnemonic, err = keystore.NewRandom()
		} else {
			ks, err = keystore.FromMnemonic(mnemonic)
		}
		if err != nil {
			return fmt.Errorf("colony init: %w", err)
		}

		if err := ks.ToFile(cfg.KeystorePath(), password); err != nil {
			return fmt.Errorf("colony init: write keystore: %w", err)
		}

		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = cfg.DataDir + "/config.yaml"
		}
		if err := config.Save(configPath, cfg); err != nil {
			return fmt.Errorf("colony init: write config: %w", err)
		}

		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		fmt.Println("Mnemonic (write this down, it will not be shown again):")
		fmt.Println("  " + mnemonic)
		fmt.Println("Data directory:", cfg.DataDir)
		fmt.Println("Configuration pod:", pm.ConfigPod())
		return nil
	},
}

func init() {
	initCmd.Flags().String("mnemonic", "", "restore from an existing 24-word mnemonic instead of generating one")
}
