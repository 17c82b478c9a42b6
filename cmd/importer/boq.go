package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"cctv-survey/internal/services"

	"github.com/spf13/cobra"
)

type importOptions struct {
	workers int
	strict  bool
	asJSON  bool
}

func (o *importOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Exit non-zero when any row is skipped or failed")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print the summary as JSON")
}

func newBOQCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boq",
		Short: "Bill-of-quantities import and reporting",
	}
	cmd.AddCommand(
		newBOQImportCmd(a),
		newBOQTemplateCmd(a),
		newBOQTotalCmd(a),
		newBOQExportCmd(a),
	)
	return cmd
}

func newBOQImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a survey spreadsheet (.xlsx or .csv) as BOQ records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers := a.cfg.ImportWorkers
			if opts.workers > 0 {
				workers = opts.workers
			}
			svc := services.NewBOQImportService(a.client, a.catalogs(), a.dateOptions(), workers, a.runs, a.logr.Logger)

			f, err := os.Open(args[0])
			if err != nil {
				return withCode(exitFailure, err)
			}
			defer f.Close()

			summary, err := svc.Import(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return withCode(exitFailure, fmt.Errorf("import aborted: %w", err))
			}
			return report(cmd.OutOrStdout(), summary, opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent row writes (default: IMPORT_WORKERS)")
	return cmd
}

func newBOQTemplateCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank BOQ workbook with one column per catalog item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := a.catalogs().Load(cmd.Context())
			if err != nil {
				return withCode(exitFailure, fmt.Errorf("load reference data: %w", err))
			}
			body, err := services.GenerateBOQTemplate(refs)
			if err != nil {
				return withCode(exitFailure, err)
			}
			return writeOutput(cmd, out, body)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "boq_template.xlsx", "Output file")
	return cmd
}

func newBOQTotalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Print the grand total cost of all BOQs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := services.NewBOQService(a.client).GrandTotal(cmd.Context())
			if err != nil {
				return withCode(exitFailure, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s across %d BOQs\n", total.Formatted, total.Count)
			return nil
		},
	}
}

func newBOQExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all BOQs with their cost to a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := services.NewBOQService(a.client).Records(cmd.Context())
			if err != nil {
				return withCode(exitFailure, err)
			}
			body, err := services.ExportBOQs(records)
			if err != nil {
				return withCode(exitFailure, err)
			}
			return writeOutput(cmd, out, body)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "boqs.xlsx", "Output file")
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, body []byte) error {
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return withCode(exitFailure, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(body))
	return nil
}

// report prints the per-row log followed by the summary line.
func report(w io.Writer, s *services.ImportSummary, opts importOptions) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return withCode(exitFailure, err)
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROW\tSTATUS\tMESSAGE")
		for _, l := range s.Logs {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", l.Row, l.Status, l.Message)
		}
		tw.Flush()

		fmt.Fprintf(w, "\n%s %s: %d rows, %d succeeded, %d skipped, %d failed\n",
			s.Kind, s.FileName, s.Total, s.Succeeded, s.Skipped, s.Failed)
		if s.Created != nil {
			fmt.Fprintf(w, "created: %d divisions, %d depots, %d bus stations, %d bus stands\n",
				s.Created.Divisions, s.Created.Depots, s.Created.BusStations, s.Created.BusStands)
		}
		if s.Totals != nil {
			fmt.Fprintf(w, "totals:  %d divisions, %d depots, %d bus stations, %d bus stands\n",
				s.Totals.Divisions, s.Totals.Depots, s.Totals.BusStations, s.Totals.BusStands)
		}
		fmt.Fprintf(w, "run %s\n", s.RunID)
	}

	if opts.strict && (s.Skipped > 0 || s.Failed > 0) {
		return withCode(exitFailure, fmt.Errorf("%d rows skipped, %d failed", s.Skipped, s.Failed))
	}
	return nil
}
