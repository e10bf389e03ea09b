package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orestack/minereport/internal/registry"
)

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "List registered reporting standards",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.New()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tBODY\tPERSON\tFIELDS\tREQUIRED")
		for _, s := range reg.AllStandards() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
				s.ID, s.Name, s.RegulatoryBody, s.PersonRole, len(s.Fields), len(s.Required()))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(standardsCmd)
}
