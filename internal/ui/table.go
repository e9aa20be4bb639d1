// Package ui renders aligned tabular output for command summaries.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders rows of data in aligned columns.
type Table struct {
	w    *tabwriter.Writer
	rows int
}

// NewTable creates a new table writer with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return &Table{w: tw}
}

// Row appends a row of values. The number of values should match the
// number of headers.
func (t *Table) Row(values ...string) {
	_, _ = fmt.Fprintln(t.w, strings.Join(values, "\t"))
	t.rows++
}

// Len returns the number of data rows appended so far.
func (t *Table) Len() int {
	return t.rows
}

// Flush writes the buffered output.
func (t *Table) Flush() error {
	return t.w.Flush()
}
