package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/jnetcce/cce"
)

var (
	fetchOTN         bool
	fetchTimeout     time.Duration
	fetchConcurrency int
)

// fetchCmd submits lookups and waits for their results
var fetchCmd = &cobra.Command{
	Use:   "fetch <key>...",
	Short: "Request court case events and wait for the results",
	Long: `Submit a request for each key, wait for JNET to answer, and retrieve the
results. Keys are docket numbers unless --otn is given.

Each key is tracked under its own tracking id, so several keys can be
fetched concurrently without their results being mixed up.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchOTN, "otn", false, "treat keys as offense tracking numbers")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "how long to wait for each key (default from config)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 4, "number of keys fetched at once")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	build := cce.DocketKey
	if fetchOTN {
		build = cce.OTNKey
	}
	keys := keysFromArgs(args, build)

	var (
		mu   sync.Mutex
		docs []cce.RetrievedDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			got, err := client.FetchDocuments(gctx, key, fetchTimeout)
			mu.Lock()
			docs = append(docs, got...)
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", key, err)
			}
			logger.Info().Str("key", key.String()).Int("documents", len(got)).Msg("Successfully fetched documents")
			return nil
		})
	}
	err := g.Wait()

	if saveErr := archiveDocuments(cmd, docs); saveErr != nil {
		logger.Error().Err(saveErr).Msg("Failed to archive retrieved documents")
	}
	if err != nil {
		return err
	}
	return printDocuments(docs)
}
