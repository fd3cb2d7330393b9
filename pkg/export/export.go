// Package export writes plans to JSON, CSV, XLSX and HTML, and reads edited
// ledgers back from CSV and XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/sprintplan/core/capacity"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/planner"
)

// Document is the exported view of a plan.
type Document struct {
	PlanID      string                   `json:"plan_id"`
	Sprints     []model.Sprint           `json:"sprints"`
	Entries     []model.Entry            `json:"entries"`
	Capacity    []capacity.Row           `json:"capacity"`
	Utilization []planner.UtilizationRow `json:"utilization"`
	Totals      planner.Totals           `json:"totals"`
}

// FromPlan builds a Document with entries sorted by sprint then owner.
func FromPlan(p *planner.Plan) Document {
	return Document{
		PlanID:      p.ID,
		Sprints:     p.Sprints,
		Entries:     p.SortedEntries(),
		Capacity:    p.Capacity,
		Utilization: p.Utilization,
		Totals:      p.Totals,
	}
}

// WriteJSON writes doc to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON decodes a Document.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	err := json.NewDecoder(r).Decode(&doc)
	return doc, err
}

// LedgerHeader is the column layout of CSV and XLSX ledgers.
var LedgerHeader = []string{"sprint", "task", "owner", "role", "hours", "critical", "phase", "block", "pinned"}

func ledgerRecord(e model.Entry) []string {
	return []string{
		strconv.Itoa(e.Sprint),
		e.Task,
		e.Owner,
		e.Role.String(),
		strconv.FormatFloat(e.Hours, 'f', -1, 64),
		strconv.FormatBool(e.Critical),
		string(e.Phase),
		strconv.Itoa(e.Block),
		strconv.FormatBool(e.Pinned),
	}
}

// WriteCSV writes the ledger to w in CSV format.
func WriteCSV(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(ledgerRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a ledger written by WriteCSV. Columns are matched by
// header name so reordered sheets still load.
func ReadCSV(r io.Reader) ([]model.Entry, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	return parseLedger(rows)
}

func parseLedger(rows [][]string) ([]model.Entry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("ledger is empty")
	}
	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range []string{"sprint", "task", "owner", "role", "hours"} {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("ledger header: missing column %q", h)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]model.Entry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if len(strings.Join(row, "")) == 0 {
			continue
		}
		var e model.Entry
		var err error
		if e.Sprint, err = strconv.Atoi(cell(row, "sprint")); err != nil {
			return nil, fmt.Errorf("row %d: sprint: %w", line, err)
		}
		e.Task = cell(row, "task")
		e.Owner = cell(row, "owner")
		if err := e.Role.UnmarshalText([]byte(cell(row, "role"))); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if e.Hours, err = strconv.ParseFloat(cell(row, "hours"), 64); err != nil {
			return nil, fmt.Errorf("row %d: hours: %w", line, err)
		}
		if e.Critical, err = parseBool(cell(row, "critical")); err != nil {
			return nil, fmt.Errorf("row %d: critical: %w", line, err)
		}
		e.Phase = model.Phase(cell(row, "phase"))
		if v := cell(row, "block"); v != "" {
			if e.Block, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("row %d: block: %w", line, err)
			}
		}
		if e.Pinned, err = parseBool(cell(row, "pinned")); err != nil {
			return nil, fmt.Errorf("row %d: pinned: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
