package etl

import "strings"

// ── Row ────────────────────────────────────────────────────
// Common output format. The transformer emits Rows, the file sink
// consumes them.

// Output file layout.
const (
	FieldDelimiter       = "\t\t\t"
	RowSeparator         = "\n"
	CellContentSeparator = ","
)

// Column positions inside a Row.
const (
	ColPartNumber = iota
	ColBrand
	ColQuality
	ColCategory
	ColModelName
	ColEAN
	ColMarketPresence
	ColFamily
	ColTitle

	ColumnCount
)

// Columns is the fixed header of the export file, in Row order.
var Columns = Row{
	"Part number",
	"Brand",
	"Quality",
	"Category",
	"Model Name",
	"EAN",
	"Market Presence",
	"Family",
	"Title",
}

// Row is one line of the export file. Being an array, assignment copies it,
// so rows never share state.
type Row [ColumnCount]string

// RawRecord is one undecoded document pulled from a RecordSource.
type RawRecord []byte

// Line renders the row as written to the export file.
// Values are not quoted or escaped: a value containing FieldDelimiter
// produces a line that cannot be split back unambiguously.
func (r Row) Line() string {
	return strings.Join(r[:], FieldDelimiter) + RowSeparator
}
