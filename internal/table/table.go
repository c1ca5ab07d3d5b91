package table

import "strings"

// Table is an in-memory, header-addressed table of text cells. Both workbook
// sheets and CSV files are loaded into this shape before any typed parsing
// happens, so the calculation core never touches file formats.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New builds a Table from a header row and data rows. Rows shorter than the
// header are allowed; missing cells read as "".
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		key := NormalizeColumnName(c)
		if _, exists := t.index[key]; !exists {
			t.index[key] = i
		}
	}
	return t
}

// ColumnIndex resolves a column by name, tolerating spacing, case and
// punctuation differences. Returns -1 when the column is absent.
func (t *Table) ColumnIndex(name string) int {
	if idx, ok := t.index[NormalizeColumnName(name)]; ok {
		return idx
	}
	return -1
}

// HasColumn reports whether a column with the given (normalized) name exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// MissingColumns returns the subset of names that are not present, preserving
// the order they were asked for. Used for schema validation messages.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Cell returns the trimmed cell at (row, column index), or "" when the row is
// ragged or the index is negative.
func (t *Table) Cell(row int, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "(", "", ")", "", "%", "")

// NormalizeColumnName lowercases a header cell and strips separators so that
// "SaSa Net Stock", "sasa_net_stock" and "SaSa Net Stock " all resolve to the
// same column.
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
