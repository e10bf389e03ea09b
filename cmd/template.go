package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
	"github.com/orestack/minereport/internal/template"
)

var (
	templateFormat string
	templateOut    string
)

var templateCmd = &cobra.Command{
	Use:   "template <standard>",
	Short: "Generate a fillable template for a reporting standard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.New()
		if err != nil {
			return err
		}

		schema, ok := reg.Lookup(model.StandardID(args[0]))
		if !ok {
			return eris.Errorf("unknown standard %q", args[0])
		}

		var data []byte
		switch templateFormat {
		case "xlsx", "":
			data, err = template.Fillable(schema)
		case "csv":
			data, err = template.FillableCSV(schema)
		default:
			return eris.Errorf("unsupported format %q", templateFormat)
		}
		if err != nil {
			return err
		}

		out := templateOut
		if out == "" {
			ext := templateFormat
			if ext == "" {
				ext = "xlsx"
			}
			out = fmt.Sprintf("%s_template.%s", schema.ID, ext)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s template to %s\n", schema.ID, out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateFormat, "format", "xlsx", "template format: xlsx or csv")
	templateCmd.Flags().StringVar(&templateOut, "out", "", "output path")
	rootCmd.AddCommand(templateCmd)
}
