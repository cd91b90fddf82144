package history

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/internal/app/repository"
)

var limit int

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "List recently processed objects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}

		ledger, err := repository.OpenSQLLedger(cmd.Context(), cfg.Ledger.Driver, cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		defer ledger.Close()

		entries, err := ledger.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROCESSED\tKIND\tOBJECT\tRESULT")
		for _, e := range entries {
			result := e.Result
			if e.HasError {
				result = "error: " + e.ErrorMessage
			}
			fmt.Fprintf(w, "%s\t%s\ts3://%s/%s\t%s\n",
				e.ProcessedAt.Local().Format(time.DateTime), e.Kind, e.Bucket, e.Key, result)
		}
		return w.Flush()
	},
}
