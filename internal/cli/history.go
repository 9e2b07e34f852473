package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"prodexport/internal/etl"
	"prodexport/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent export runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Disabled {
		return fmt.Errorf("run history is disabled")
	}

	db, err := storage.New(cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := storage.NewRunStore(db).ListRunLogs(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No export runs recorded.")
		return nil
	}
	printRuns(cmd, runs)
	return nil
}

func printRuns(cmd *cobra.Command, runs []etl.RunLog) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tSOURCE\tOFFSET\tREAD\tSKIPPED\tROWS\tSTAGED\tDURATION\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.SourceType,
			r.Offset,
			r.RecordsRead,
			r.RecordsSkipped,
			r.RowsWritten,
			lo.Ternary(r.TestMode, "test", lo.Ternary(r.Staged, "yes", "no")),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Error,
		)
	}
	w.Flush()
}
