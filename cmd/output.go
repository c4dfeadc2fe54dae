package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/s0up4200/jnetcce/cce"
)

func validateOutputFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid output format %q (must be table, json or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML. It returns false for table output.
func writeStructured(w io.Writer, v any) (bool, error) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func printRequests(reqs []cce.SubmittedRequest) error {
	if done, err := writeStructured(os.Stdout, reqs); done {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACKING ID\tKEY\tSTATUS\tDESCRIPTION")
	for _, r := range reqs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CorrelationID, r.Key, r.Status, r.Description)
	}
	return tw.Flush()
}

func printStatuses(statuses []cce.RequestStatus) error {
	if done, err := writeStructured(os.Stdout, statuses); done {
		return err
	}

	if len(statuses) == 0 {
		fmt.Println("No queue records match.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE ID\tTRACKING ID\tSTATE\tTYPE\tKEY\tMESSAGE")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.FileID, s.CorrelationID, s.State(), s.KeyKind, s.Key, s.Message)
	}
	return tw.Flush()
}

func printDocuments(docs []cce.RetrievedDocument) error {
	if done, err := writeStructured(os.Stdout, docs); done {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents retrieved.")
		return nil
	}

	fmt.Printf("\nRetrieved %d documents:\n", len(docs))
	fmt.Println(strings.Repeat("-", 80))
	for _, d := range docs {
		fmt.Printf("• %s [%s] tracking id %s\n", d.FileID, d.Outcome, d.CorrelationID)
		if d.BackendReturnText != "" {
			fmt.Printf("  Backend: %s %s\n", d.BackendReturnCode, d.BackendReturnText)
		}
		if d.FaultReason != "" {
			fmt.Printf("  Reason: %s\n", d.FaultReason)
		}
		if d.HasCaseData() {
			fmt.Printf("  Case event: %d fields (use -o json for the full document)\n", len(d.CaseEvent))
		}
	}
	return nil
}
