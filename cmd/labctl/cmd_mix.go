package main

import (
	"github.com/spf13/cobra"
)

var mixFlags simulateOptions

var mixCmd = &cobra.Command{
	Use:     "mix CONTAINER+INCOMING...",
	Short:   "Replay a sequence of pours and print the outcome",
	Example: "  labctl mix --guided --advance HCl+NaOH Zn+HCl",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runMix,
}

func init() {
	f := mixCmd.Flags()
	f.BoolVar(&mixFlags.guided, "guided", false, "Run in guided mode")
	f.BoolVar(&mixFlags.advance, "advance", false, "Advance to the next exercise after each completion")
}

func runMix(cmd *cobra.Command, args []string) error {
	pours, err := parsePours(args)
	if err != nil {
		return err
	}
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st, err := simulate(cmd.Context(), c, pours, mixFlags, out)
	if err != nil {
		return err
	}
	printSummary(out, st)
	return nil
}
