package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-lab/internal/report"
)

var reportFlags struct {
	simulateOptions
	output string
}

var reportCmd = &cobra.Command{
	Use:   "report CONTAINER+INCOMING...",
	Short: "Replay pours and write the session as an XLSX workbook",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.output, "output", "o", "", "Output .xlsx path (required)")
	f.BoolVar(&reportFlags.guided, "guided", false, "Run in guided mode")
	f.BoolVar(&reportFlags.advance, "advance", false, "Advance to the next exercise after each completion")

	_ = reportCmd.MarkFlagRequired("output")
}

func runReport(cmd *cobra.Command, args []string) error {
	pours, err := parsePours(args)
	if err != nil {
		return err
	}
	c, err := loadCatalog()
	if err != nil {
		return err
	}

	st, err := simulate(cmd.Context(), c, pours, reportFlags.simulateOptions, io.Discard)
	if err != nil {
		return err
	}

	f, err := os.Create(reportFlags.output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, st); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s\n", reportFlags.output)
	printSummary(out, st)
	return nil
}
