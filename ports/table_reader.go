package ports

import (
	"context"
)

// RawRow is one data row keyed by header name
type RawRow struct {
	Line  int               // 1-based line (CSV) or row (XLSX) number in the source file
	Cells map[string]string // header -> trimmed cell text
}

// RawTable is an untyped table as read from a delimited or spreadsheet file
type RawTable struct {
	Source  string
	Format  string
	Headers []string
	Rows    []RawRow
}

// TableReader reads a tabular source without interpreting cell types
type TableReader interface {
	ReadTable(ctx context.Context) (*RawTable, error)
}
