package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jnetcce/cce"
)

var (
	requestTrackingID string
	participantFirst  string
	participantLast   string
	participantBirth  string
)

// requestCmd submits lookups without waiting for them
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Submit court case event requests",
	Long: `Submit one or more court case event requests to JNET.

Requests are answered asynchronously. Use 'status' to watch the queue and
'collect' or 'retrieve' to download the results once they are ready.`,
}

var requestDocketCmd = &cobra.Command{
	Use:   "docket <docket-number>...",
	Short: "Request court case events by docket number",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitKeys(cmd, keysFromArgs(args, cce.DocketKey))
	},
}

var requestOTNCmd = &cobra.Command{
	Use:   "otn <otn>...",
	Short: "Request court case events by offense tracking number",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitKeys(cmd, keysFromArgs(args, cce.OTNKey))
	},
}

var requestParticipantCmd = &cobra.Command{
	Use:   "participant",
	Short: "Request court case events for a case participant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := participantKey(participantFirst, participantLast, participantBirth)
		if err != nil {
			return err
		}
		return submitKeys(cmd, []cce.BusinessKey{key})
	},
}

func init() {
	requestCmd.PersistentFlags().StringVar(&requestTrackingID, "tracking-id", "", "tracking id to submit with (generated when empty, single key only)")

	requestParticipantCmd.Flags().StringVar(&participantFirst, "first", "", "participant first name")
	requestParticipantCmd.Flags().StringVar(&participantLast, "last", "", "participant last name")
	requestParticipantCmd.Flags().StringVar(&participantBirth, "birthdate", "", "participant birth date (YYYY-MM-DD)")
	_ = requestParticipantCmd.MarkFlagRequired("first")
	_ = requestParticipantCmd.MarkFlagRequired("last")
	_ = requestParticipantCmd.MarkFlagRequired("birthdate")

	requestCmd.AddCommand(requestDocketCmd)
	requestCmd.AddCommand(requestOTNCmd)
	requestCmd.AddCommand(requestParticipantCmd)
}

func submitKeys(cmd *cobra.Command, keys []cce.BusinessKey) error {
	if requestTrackingID != "" && len(keys) > 1 {
		return fmt.Errorf("--tracking-id can only be used with a single key")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	reqs := make([]cce.SubmittedRequest, 0, len(keys))
	for _, key := range keys {
		req, err := client.Submit(ctx, key, requestTrackingID)
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", key, err)
		}
		reqs = append(reqs, req)
	}
	return printRequests(reqs)
}

func keysFromArgs(args []string, build func(string) cce.BusinessKey) []cce.BusinessKey {
	keys := make([]cce.BusinessKey, 0, len(args))
	for _, arg := range args {
		keys = append(keys, build(arg))
	}
	return keys
}

func participantKey(first, last, birth string) (cce.BusinessKey, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(birth))
	if err != nil {
		return cce.BusinessKey{}, fmt.Errorf("invalid birth date %q (expected YYYY-MM-DD): %w", birth, err)
	}
	return cce.ParticipantKey(first, last, date), nil
}

// commandContext returns the command's context cancelled on interrupt
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
