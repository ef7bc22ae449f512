package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"possales/internal/render"
	"possales/internal/services"
)

var reportCmd = LeafCommand{
	Use:   "report",
	Short: "Total sales over a date range",
	StrFlags: []StringFlag{
		{Name: "start", Usage: "first day of the range (YYYY-MM-DD)"},
		{Name: "end", Usage: "last day of the range, inclusive (YYYY-MM-DD)"},
		{Name: "granularity", Usage: "bucket size: day, week or month", Default: "day"},
		{Name: "format", Usage: "output format: text, csv or json", Default: "text"},
	},
	BoolFlags: []BoolFlag{
		{Name: "by-category", Usage: "split totals per category"},
		{Name: "exclude-uncategorized", Usage: "drop items without a known category"},
		{Name: "save", Usage: "archive the report in the local database"},
		{Name: "sheets", Usage: "export the report to Google Sheets"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := reportOptions{}
		opts.start, _ = cmd.Flags().GetString("start")
		opts.end, _ = cmd.Flags().GetString("end")
		opts.granularity, _ = cmd.Flags().GetString("granularity")
		opts.format, _ = cmd.Flags().GetString("format")
		opts.byCategory, _ = cmd.Flags().GetBool("by-category")
		opts.excludeUncategorized, _ = cmd.Flags().GetBool("exclude-uncategorized")
		opts.save, _ = cmd.Flags().GetBool("save")
		opts.sheets, _ = cmd.Flags().GetBool("sheets")

		if opts.start == "" || opts.end == "" {
			return fmt.Errorf("--start and --end are required")
		}
		// Reject bad formats before touching the network.
		if _, err := render.ParseFormat(opts.format); err != nil {
			return err
		}

		n := needs{service: true, archive: opts.save, sheets: opts.sheets}
		return withDeps(commandContext(cmd), n, func(d *Deps) error {
			return runReport(cmd, d, opts)
		})
	},
}.Build()

type reportOptions struct {
	start                string
	end                  string
	granularity          string
	format               string
	byCategory           bool
	excludeUncategorized bool
	save                 bool
	sheets               bool
}

func runReport(cmd *cobra.Command, d *Deps, opts reportOptions) error {
	ctx := commandContext(cmd)
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	req, err := services.NewRequest(opts.start, opts.end, opts.granularity, opts.byCategory, d.Service.Location())
	if err != nil {
		return err
	}
	req.IncludeUncategorized = !opts.excludeUncategorized
	if d.Config != nil {
		req.IncludeUncategorized = req.IncludeUncategorized && d.Config.IncludeUncategorized
	}
	req.Archive = opts.save

	res, err := d.Service.Report(ctx, req)
	if err != nil {
		return err
	}
	if err := render.Write(cmd.OutOrStdout(), format, res.Summary); err != nil {
		return err
	}

	if opts.save {
		if !res.Archived {
			return fmt.Errorf("report %s was not archived", res.RunID)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", res.RunID)
	}
	if opts.sheets {
		if d.Exporter == nil {
			return fmt.Errorf("sheets export is not configured")
		}
		rng, err := d.Exporter.Export(ctx, res.Summary)
		if err != nil {
			return fmt.Errorf("export to sheets: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", rng)
	}
	return nil
}
