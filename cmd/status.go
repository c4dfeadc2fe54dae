package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jnetcce/cce"
	"github.com/s0up4200/jnetcce/filter"
)

var (
	statusTrackingID string
	statusDocket     string
	statusOTN        string
	statusHistory    bool
	statusLimit      int
	statusCheck      bool
	statusWhere      string
	statusPreset     string
)

// statusCmd lists and classifies the request queue
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of submitted requests",
	Long: `List the JNET request queue and classify every record as queued, found or
not found. Nothing is consumed.

Records can be narrowed further with an expression, for example:
  jnetcce status --where 'Queued == false && hasPrefixFold(Key, "CP-51")'`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusTrackingID, "tracking-id", "", "only records with this tracking id")
	statusCmd.Flags().StringVar(&statusDocket, "docket", "", "only records for this docket number")
	statusCmd.Flags().StringVar(&statusOTN, "otn", "", "only records for this offense tracking number")
	statusCmd.Flags().BoolVar(&statusHistory, "history", false, "include records that were already retrieved")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 0, "maximum number of records to request (default from config)")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "fail when nothing matches")
	statusCmd.Flags().StringVar(&statusWhere, "where", "", "filter expression evaluated against each record")
	statusCmd.Flags().StringVar(&statusPreset, "preset", "", "named filter expression from the config file")
	statusCmd.MarkFlagsMutuallyExclusive("docket", "otn")
	statusCmd.MarkFlagsMutuallyExclusive("where", "preset")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	where, err := statusExpression()
	if err != nil {
		return err
	}

	opts := cce.PollOptions{
		CorrelationID: statusTrackingID,
		Key:           keyFromFlags(statusDocket, statusOTN),
		PendingOnly:   !statusHistory,
		Limit:         statusLimit,
		Check:         statusCheck,
	}

	statuses, err := client.Poll(ctx, opts)
	if err != nil {
		return err
	}

	if where != "" {
		f, err := filter.NewCompiler().Compile(where)
		if err != nil {
			return err
		}
		statuses, err = f.Apply(statuses)
		if err != nil {
			return err
		}
		logger.Debug().Str("filter", where).Int("matched", len(statuses)).Msg("Applied status filter")
	}

	return printStatuses(statuses)
}

func statusExpression() (string, error) {
	if statusPreset == "" {
		return statusWhere, nil
	}
	// viper lower-cases map keys
	expression, ok := cfg.Filter[strings.ToLower(statusPreset)]
	if !ok {
		return "", fmt.Errorf("no filter preset named %q in config", statusPreset)
	}
	return expression, nil
}

// keyFromFlags returns the key selected by --docket or --otn, if any
func keyFromFlags(docket, otn string) cce.BusinessKey {
	switch {
	case docket != "":
		return cce.DocketKey(docket)
	case otn != "":
		return cce.OTNKey(otn)
	default:
		return cce.BusinessKey{}
	}
}
