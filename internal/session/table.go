// Package session records experiment samples and persists them as CSV logs.
package session

import "github.com/verte-zerg/fitts/internal/model"

// Table is the append-only list of every sample recorded in a run.
type Table struct {
	rows []model.Sample
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Append adds rows to the end of the table.
func (t *Table) Append(rows ...model.Sample) {
	t.rows = append(t.rows, rows...)
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []model.Sample {
	return append([]model.Sample(nil), t.rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}
