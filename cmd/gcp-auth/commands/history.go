package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/keeper-security/gcp-auth/internal/audit"
	"github.com/spf13/cobra"
)

var (
	historyProfile string
	historyLimit   int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent vault operations",
	Long: `Show register, activate and delete operations recorded in the audit log,
oldest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyProfile, "profile", "", "only show events for this profile")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.Audit.Enabled {
		console.DisplayInfo("Audit logging is disabled")
		return nil
	}
	if historyLimit < 0 {
		return fmt.Errorf("--limit cannot be negative")
	}

	query := audit.Query{Limit: historyLimit}
	if historyProfile != "" {
		query.Profiles = []string{historyProfile}
	}

	var events []*audit.AuditEvent
	var err error
	if auditLogger != nil {
		events, err = auditLogger.Search(query)
	} else {
		// The log could not be opened for writing; it may still be readable
		events, err = audit.SearchFile(cfg.Audit.File, query)
	}
	if err != nil {
		return err
	}
	if len(events) == 0 {
		console.DisplayInfo("No recorded operations")
		return nil
	}

	w := tabwriter.NewWriter(console.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOPERATION\tPROFILE\tRESULT")
	for _, e := range events {
		result := e.Result
		if e.Error != "" {
			result = e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Type, e.Profile, result)
	}
	return w.Flush()
}
