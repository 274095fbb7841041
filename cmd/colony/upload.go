package main

import (
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "push every queued pod, pointer, and scratchpad to the network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.UploadAll(cmd.Context())
	},
}
