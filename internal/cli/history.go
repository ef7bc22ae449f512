package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"possales/internal/core"
	"possales/internal/render"
	"possales/internal/storage"
)

// runStore is the archive view used by history.
type runStore interface {
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (storage.Run, error)
}

var historyCmd = LeafCommand{
	Use:   "history [run-id]",
	Short: "List archived reports, or show one",
	Args:  cobra.MaximumNArgs(1),
	StrFlags: []StringFlag{
		{Name: "limit", Usage: "maximum number of runs to list", Default: "20"},
		{Name: "format", Usage: "output format when showing a run: text, csv or json", Default: "text"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		limitStr, _ := cmd.Flags().GetString("limit")
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid --limit %q: must be a positive integer", limitStr)
		}
		format, _ := cmd.Flags().GetString("format")
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return withDeps(commandContext(cmd), needs{archive: true}, func(d *Deps) error {
			return runHistory(cmd, d.Archive, id, limit, format)
		})
	},
}.Build()

func runHistory(cmd *cobra.Command, runs runStore, id string, limit int, format string) error {
	ctx := commandContext(cmd)
	if id != "" {
		f, err := render.ParseFormat(format)
		if err != nil {
			return err
		}
		run, err := runs.GetRun(ctx, id)
		if err != nil {
			return err
		}
		return render.Write(cmd.OutOrStdout(), f, run.Summary)
	}

	list, err := runs.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived reports.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tRANGE\tGRANULARITY\tTOTAL")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s..%s\t%s\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Summary.Start.Format(core.DateLayout),
			r.Summary.End.Format(core.DateLayout),
			granularityLabel(r),
			r.Total.StringFixed(2))
	}
	return tw.Flush()
}

func granularityLabel(r storage.Run) string {
	if r.Summary.ByCategory {
		return r.Summary.Granularity.String() + "/category"
	}
	return r.Summary.Granularity.String()
}
