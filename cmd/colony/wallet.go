package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "manage payment wallets used by upload",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <secret-hex>",
	Short: "import a wallet's secret scalar under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.AddWallet(args[0], args[1])
	},
}

var walletRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "remove an imported wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.RemoveWallet(args[0])
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "set the active wallet used to pay for uploads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return pm.SetActiveWallet(args[0])
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "list imported wallets and the active one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		active, _, err := pm.ActiveWallet()
		if err != nil {
			active = ""
		}
		for name, addr := range pm.ListWallets() {
			marker := "  "
			if name == active {
				marker = "* "
			}
			fmt.Printf("%s%s  %s\n", marker, name, addr)
		}
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletAddCmd, walletRmCmd, walletUseCmd, walletListCmd)
}
