package main

import (
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "pull network state into the local cache",
}

var refreshCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "resync the configuration pod and every owned pod's local files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RefreshCache(cmd.Context())
	},
}

var refreshRefCmd = &cobra.Command{
	Use:   "ref",
	Short: "crawl cross-pod references breadth-first from owned pods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RefreshRef(cmd.Context(), depth)
	},
}

func init() {
	refreshRefCmd.Flags().Int("depth", 0, "maximum hop count (0 crawls until nothing new is found)")
	refreshCmd.AddCommand(refreshCacheCmd, refreshRefCmd)
}
