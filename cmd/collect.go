package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/jnetcce/cce"
)

var (
	collectTrackingID     string
	collectDocket         string
	collectOTN            string
	collectIncludeQueued  bool
	collectIgnoreNotFound bool
	collectCheck          bool
	collectHistory        bool
	collectDryRun         bool
)

// collectCmd reconciles the queue and fetches everything that is ready
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Retrieve every finished request in the queue",
	Long: `Poll the queue, decide which records are ready, and retrieve them.

Queued placeholders whose tracking id already has a finished record are
retrieved and discarded so they do not linger in the queue. Queued records
without a finished counterpart are left alone unless --include-queued is set.`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectTrackingID, "tracking-id", "", "only records with this tracking id")
	collectCmd.Flags().StringVar(&collectDocket, "docket", "", "only records for this docket number")
	collectCmd.Flags().StringVar(&collectOTN, "otn", "", "only records for this offense tracking number")
	collectCmd.Flags().BoolVar(&collectIncludeQueued, "include-queued", false, "also retrieve queued records without a finished counterpart")
	collectCmd.Flags().BoolVar(&collectIgnoreNotFound, "ignore-not-found", false, "leave not found records in the queue")
	collectCmd.Flags().BoolVar(&collectCheck, "check", false, "fail before retrieving anything when records are not found or queued")
	collectCmd.Flags().BoolVar(&collectHistory, "history", false, "include records that were already retrieved")
	collectCmd.Flags().BoolVar(&collectDryRun, "dry-run", false, "show what would be retrieved without consuming anything")
	collectCmd.MarkFlagsMutuallyExclusive("docket", "otn")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	statuses, err := client.Poll(ctx, cce.PollOptions{
		CorrelationID: collectTrackingID,
		Key:           keyFromFlags(collectDocket, collectOTN),
		PendingOnly:   !collectHistory,
	})
	if err != nil {
		return err
	}

	opts := cce.ReconcileOptions{
		IgnoreQueued:   !collectIncludeQueued,
		IgnoreNotFound: collectIgnoreNotFound,
		Check:          collectCheck,
	}

	if collectDryRun {
		plan, err := cce.PlanReconcile(statuses, opts)
		if err != nil {
			return err
		}
		logger.Info().
			Int("keep", len(plan.Keep)).
			Int("discard", len(plan.Discard)).
			Int("skip", len(plan.Skip)).
			Msg("[DRY RUN] Reconcile plan")
		return printStatuses(plan.Keep)
	}

	docs, err := client.Reconcile(ctx, statuses, opts)
	if saveErr := archiveDocuments(cmd, docs); saveErr != nil {
		logger.Error().Err(saveErr).Msg("Failed to archive retrieved documents")
	}
	if err != nil {
		return err
	}
	return printDocuments(docs)
}
