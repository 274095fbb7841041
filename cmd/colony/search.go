package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colonylib/colony/pkg/podmanager"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search indexed pod content",
	Long: `search accepts either a bare text query or a JSON object
shaped like podmanager.SearchQuery, e.g.:

  colony search "ant girl"
  colony search '{"type":"by_type","type_iri":"https://schema.org/MediaObject"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := podmanager.ParseSearchQuery(json.RawMessage(mustQuote(args[0])))
		if err != nil {
			return err
		}

		pm, closeFn, err := openManager(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := pm.Search(q)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// mustQuote lets a bare text query ("ant girl") and a raw JSON object
// ({"type":...}) both be handed to ParseSearchQuery unchanged: JSON input
// passes through as-is, anything else is wrapped as a JSON string.
func mustQuote(arg string) string {
	var js json.RawMessage
	if json.Unmarshal([]byte(arg), &js) == nil {
		return arg
	}
	quoted, _ := json.Marshal(arg)
	return string(quoted)
}
