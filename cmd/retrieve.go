package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/jnetcce/cce"
)

var (
	retrieveNoCheck      bool
	retrieveRejectQueued bool
)

// retrieveCmd fetches individual files by id
var retrieveCmd = &cobra.Command{
	Use:   "retrieve <file-id>...",
	Short: "Retrieve documents by file id",
	Long: `Retrieve documents from the JNET queue by file id.

Retrieving a file removes it from the queue, so each id can only be fetched
once. With --no-check, not found and invalid request results are printed
instead of being reported as errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().BoolVar(&retrieveNoCheck, "no-check", false, "print failed lookups instead of returning an error")
	retrieveCmd.Flags().BoolVar(&retrieveRejectQueued, "reject-queued", false, "treat queued placeholders as errors")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	opts := cce.RetrieveOptions{
		Check:       !retrieveNoCheck,
		AllowQueued: !retrieveRejectQueued,
	}

	docs := make([]cce.RetrievedDocument, 0, len(args))
	for _, arg := range args {
		doc, err := client.Retrieve(ctx, cce.FileID(arg), opts)
		if err != nil {
			// keep what was already consumed
			if saveErr := archiveDocuments(cmd, docs); saveErr != nil {
				logger.Error().Err(saveErr).Msg("Failed to archive retrieved documents")
			}
			return err
		}
		docs = append(docs, doc)
	}

	if err := archiveDocuments(cmd, docs); err != nil {
		return err
	}
	return printDocuments(docs)
}

// archiveDocuments stores documents when the archive is enabled
func archiveDocuments(cmd *cobra.Command, docs []cce.RetrievedDocument) error {
	if store == nil || len(docs) == 0 {
		return nil
	}
	return store.Save(cmd.Context(), docs)
}
