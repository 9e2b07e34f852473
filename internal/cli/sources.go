package cli

import (
	"github.com/spf13/cobra"

	"prodexport/internal/etl"
	_ "prodexport/internal/etl/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available record source types",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, typ := range etl.ListSources() {
			cmd.Println(typ)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
