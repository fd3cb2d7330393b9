package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/sprintplan/core/model"
)

const (
	SheetLedger      = "Ledger"
	SheetCapacity    = "Capacity"
	SheetUtilization = "Utilization"
	SheetTotals      = "Totals"
)

// WriteXLSX writes doc as a workbook with one sheet per table.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLedger); err != nil {
		return err
	}
	ledger := [][]any{toAny(LedgerHeader)}
	for _, e := range doc.Entries {
		ledger = append(ledger, []any{
			e.Sprint, e.Task, e.Owner, e.Role.String(), e.Hours,
			strconv.FormatBool(e.Critical), string(e.Phase), e.Block, strconv.FormatBool(e.Pinned),
		})
	}
	if err := writeRows(f, SheetLedger, ledger); err != nil {
		return err
	}

	capRows := [][]any{{"sprint", "name", "role", "capacity"}}
	for _, c := range doc.Capacity {
		capRows = append(capRows, []any{c.Sprint, c.Name, c.Role.String(), c.Capacity})
	}
	if err := writeSheet(f, SheetCapacity, capRows); err != nil {
		return err
	}

	util := [][]any{{"sprint", "owner", "role", "hours", "capacity", "percent"}}
	for _, u := range doc.Utilization {
		util = append(util, []any{u.Sprint, u.Owner, u.Role.String(), u.Hours, u.Capacity, u.Percent})
	}
	if err := writeSheet(f, SheetUtilization, util); err != nil {
		return err
	}

	t := doc.Totals
	totals := [][]any{
		{"metric", "value"},
		{"baseline_hours", t.BaselineHours},
		{"planned_hours", t.PlannedHours},
		{"unassigned_hours", t.UnassignedHours},
		{"excluded_hours", t.ExcludedHours},
		{"delta", t.Delta},
		{"overloaded", t.Overloaded},
	}
	if err := writeSheet(f, SheetTotals, totals); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ReadXLSX reads the ledger sheet of a workbook written by WriteXLSX,
// possibly edited by hand.
func ReadXLSX(r io.Reader) ([]model.Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(SheetLedger, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", SheetLedger, err)
	}
	return parseLedger(rows)
}
