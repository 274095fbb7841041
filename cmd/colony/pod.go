package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var podCmd = &cobra.Command{
	Use:   "pod",
	Short: "manage pods owned by this key store",
}

var podAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "derive a fresh pod and queue it for upload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		addr, err := pm.AddPod(args[0])
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}

var podRmCmd = &cobra.Command{
	Use:   "rm <address>",
	Short: "queue a pod for removal from the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RemovePod(args[0])
	},
}

var podRenameCmd = &cobra.Command{
	Use:   "rename <address> <name>",
	Short: "rename a pod",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RenamePod(args[0], args[1])
	},
}

var podRefCmd = &cobra.Command{
	Use:   "ref",
	Short: "manage cross-pod references",
}

var podRefAddCmd = &cobra.Command{
	Use:   "add <pod> <ref>",
	Short: "record that pod references ref",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _ := cmd.Flags().GetBool("local")
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.AddPodRef(args[0], args[1], local)
	},
}

var podRefRmCmd = &cobra.Command{
	Use:   "rm <pod> <ref>",
	Short: "drop a previously recorded reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RemovePodRef(args[0], args[1])
	},
}

var podListCmd = &cobra.Command{
	Use:   "list",
	Short: "list pods owned by this key store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		pods, err := pm.ListMyPods()
		if err != nil {
			return err
		}
		for _, p := range pods {
			name := p.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%s  %-30s  depth=%d\n", p.Address, name, p.Depth)
		}
		return nil
	},
}

var podPutCmd = &cobra.Command{
	Use:   "put <pod> <subject> <json-ld-file>",
	Short: "replace a subject's data in a pod from a JSON-LD document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("colony pod put: %w", err)
		}
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.PutSubjectData(args[0], args[1], data)
	},
}

var podExportCmd = &cobra.Command{
	Use:   "export <pod>",
	Short: "write a pod's combined TriG document to the downloads folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		path, err := pm.ExportPod(args[0])
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	podRefAddCmd.Flags().Bool("local", false, "also catalogue ref as one of this key store's own pointers")

	podRefCmd.AddCommand(podRefAddCmd, podRefRmCmd)
	podCmd.AddCommand(podAddCmd, podRmCmd, podRenameCmd, podRefCmd, podListCmd, podPutCmd, podExportCmd)
}
