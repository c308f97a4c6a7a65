// Package report renders a bench's state as an XLSX workbook.
//
// The workbook has two sheets: Summary (score, temperature, mode and
// exercise progress) and Reactions (the reaction log, oldest first).
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-lab/internal/workbench"
)

// Sheet names.
const (
	SummarySheet   = "Summary"
	ReactionsSheet = "Reactions"
)

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var reactionHeader = []any{"Time", "Container", "Incoming", "Reaction", "Title", "Equation"}

// Write renders st as an XLSX workbook to w.
func Write(w io.Writer, st workbench.State) error {
	f, err := Build(st)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Build creates the workbook in memory. The caller closes it.
func Build(st workbench.State) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(ReactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	if err := writeSummary(f, st, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeReactions(f, st, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSummary(f *excelize.File, st workbench.State, bold int) error {
	p := st.Progress
	current := ""
	if p.Current != nil {
		current = p.Current.Title
	}
	rows := [][]any{
		{"Bench", st.ID},
		{"Opened", st.CreatedAt.UTC().Format(time.RFC3339)},
		{"Score", st.Score},
		{"Temperature (°C)", st.Temperature},
		{"Mode", string(st.Mode)},
		{"Exercise", fmt.Sprintf("%d / %d", exerciseNumber(p.Index, p.Total), p.Total)},
		{"Current exercise", current},
		{"Completed", strings.Join(p.Completed, ", ")},
		{"All complete", p.AllComplete},
		{"Reactions", len(st.Log)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "B", 24)
}

func writeReactions(f *excelize.File, st workbench.State, bold int) error {
	if err := f.SetSheetRow(ReactionsSheet, "A1", &reactionHeader); err != nil {
		return fmt.Errorf("writing reaction header: %w", err)
	}
	if err := f.SetCellStyle(ReactionsSheet, "A1", "F1", bold); err != nil {
		return fmt.Errorf("styling reaction header: %w", err)
	}
	for i, e := range st.Log {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.Time.UTC().Format(time.RFC3339),
			e.A,
			e.B,
			e.Key.String(),
			e.Title,
			e.Equation,
		}
		if err := f.SetSheetRow(ReactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing reaction row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(ReactionsSheet, "A", "D", 20); err != nil {
		return err
	}
	return f.SetColWidth(ReactionsSheet, "E", "F", 40)
}

// exerciseNumber is the 1-based position shown to people, 0 when empty.
func exerciseNumber(index, total int) int {
	if total == 0 {
		return 0
	}
	return index + 1
}
