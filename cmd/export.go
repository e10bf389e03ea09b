package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/orestack/minereport/internal/convert"
	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/template"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <report-id> <standard>",
	Short: "Export a report under a target reporting standard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Store.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "load report %s", args[0])
		}

		res, err := convert.Convert(report, model.StandardID(args[1]), env.Registry)
		if err != nil {
			return err
		}

		data, err := template.Render(res)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("%s_%s.xlsx", report.ID, args[1])
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}

		if _, err := env.Pipeline.MarkExported(ctx, report.ID); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %s as %s to %s\n", report.ID, args[1], out)
		if len(res.Unmappable) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d field(s) could not be mapped; see the Needs Attention sheet\n", len(res.Unmappable))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <report-id>_<standard>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
