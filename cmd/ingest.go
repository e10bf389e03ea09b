package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var ingestContentType string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a single technical report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		report, tickets, err := env.Pipeline.Ingest(ctx, filepath.Base(args[0]), data, ingestContentType)
		if err != nil {
			return err
		}

		out := map[string]any{
			"report_id": report.ID,
			"standard":  report.StandardDetected,
			"status":    report.Status,
			"summary":   report.Summary,
			"tickets":   tickets,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "encode result")
		}

		if len(tickets) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d field(s) need review; run: minereport tickets list %s\n", len(tickets), report.ID)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "declared content type of the upload (advisory)")
	rootCmd.AddCommand(ingestCmd)
}
