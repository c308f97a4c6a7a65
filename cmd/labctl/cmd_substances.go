package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var substancesFlags struct {
	reactions bool
}

var substancesCmd = &cobra.Command{
	Use:   "substances",
	Short: "List substances in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runSubstances,
}

func init() {
	substancesCmd.Flags().BoolVar(&substancesFlags.reactions, "reactions", false, "List the reactions each substance takes part in")
}

func runSubstances(cmd *cobra.Command, _ []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFORMULA\tCATEGORY\tHAZARD\tNAME")
	for _, s := range c.Substances() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Formula, s.Category, s.HazardMarks(), s.Name)
		if !substancesFlags.reactions {
			continue
		}
		for _, r := range c.ReactionsFor(s.ID) {
			fmt.Fprintf(tw, "\t\t\t\t  %s  %s\n", r.Key, r.Equation)
		}
	}
	return tw.Flush()
}
