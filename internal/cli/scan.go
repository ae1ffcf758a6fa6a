package cli

import (
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the full pipeline: ingest, classify, decode, aggregate, enrich",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Scan(cmd.Context())
	},
}
