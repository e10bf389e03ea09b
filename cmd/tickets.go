package main

import (
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/orestack/minereport/internal/model"
)

var (
	ticketsLimit   int
	resolveNumber  float64
	resolveUnit    string
	resolveText    string
	resolveDate    string
	resolveHasNum  bool
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect and resolve review tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list [report-id]",
	Short: "List open review tickets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var tickets []model.ReviewTicket
		if len(args) == 1 {
			tickets, err = env.Store.ListTickets(ctx, args[0])
		} else {
			tickets, err = env.Store.ListOpenTickets(ctx, ticketsLimit)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(tickets), "encode tickets")
	},
}

var ticketsResolveCmd = &cobra.Command{
	Use:   "resolve <report-id> <field-key>",
	Short: "Confirm or correct a flagged field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		value, err := resolvedValue(cmd)
		if err != nil {
			return err
		}

		report, tickets, err := env.Pipeline.ResolveTicket(ctx, args[0], args[1], value)
		if err != nil {
			return err
		}

		out := map[string]any{
			"report_id": report.ID,
			"version":   report.Version,
			"status":    report.Status,
			"tickets":   tickets,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(out), "encode result")
	},
}

// resolvedValue builds the reviewer-supplied FieldValue from flags. Exactly
// one of --number, --text, or --date must be set.
func resolvedValue(cmd *cobra.Command) (*model.FieldValue, error) {
	set := 0
	if resolveHasNum = cmd.Flags().Changed("number"); resolveHasNum {
		set++
	}
	if resolveText != "" {
		set++
	}
	if resolveDate != "" {
		set++
	}
	if set != 1 {
		return nil, eris.New("exactly one of --number, --text, or --date is required")
	}

	switch {
	case resolveHasNum:
		return model.NumberValue(resolveNumber, resolveUnit, "reviewer", model.ConfidenceExact), nil
	case resolveDate != "":
		d, err := time.Parse(time.DateOnly, resolveDate)
		if err != nil {
			return nil, eris.Wrapf(err, "parse date %q", resolveDate)
		}
		return model.DateValue(d, "reviewer", model.ConfidenceExact), nil
	default:
		return model.TextValue(resolveText, "reviewer", model.ConfidenceExact), nil
	}
}

func init() {
	ticketsListCmd.Flags().IntVar(&ticketsLimit, "limit", 100, "max tickets to list")
	ticketsResolveCmd.Flags().Float64Var(&resolveNumber, "number", 0, "numeric value")
	ticketsResolveCmd.Flags().StringVar(&resolveUnit, "unit", "", "unit of the numeric value")
	ticketsResolveCmd.Flags().StringVar(&resolveText, "text", "", "text value")
	ticketsResolveCmd.Flags().StringVar(&resolveDate, "date", "", "date value (YYYY-MM-DD)")
	ticketsCmd.AddCommand(ticketsListCmd, ticketsResolveCmd)
	rootCmd.AddCommand(ticketsCmd)
}
