package cli

import (
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Re-run enrichment from the persisted aggregated dump",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Enrich(cmd.Context())
	},
}
