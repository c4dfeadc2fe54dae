package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveTrackingID string

// archiveCmd lists documents kept in the local archive
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List documents stored in the local archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if store == nil {
			return fmt.Errorf("archive is disabled, set archive.enabled in config")
		}
		docs, err := store.Documents(cmd.Context(), archiveTrackingID)
		if err != nil {
			return err
		}
		return printDocuments(docs)
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveTrackingID, "tracking-id", "", "only documents with this tracking id (all when empty)")
}
