package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Table is a column-oriented result table. Every column holds exactly one
// value per row; cells that do not apply to a row are nil rather than missing.
type Table struct {
	columns []string
	values  map[string][]interface{}
	rows    int
}

// NewTable creates an empty table with a fixed column order
func NewTable(columns ...string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		values:  make(map[string][]interface{}, len(columns)),
	}
	for _, c := range columns {
		t.values[c] = nil
	}
	return t
}

// AddRow appends one row. Columns not present in cells are filled with nil;
// keys that are not table columns are rejected.
func (t *Table) AddRow(cells map[string]interface{}) error {
	for key := range cells {
		if _, ok := t.values[key]; !ok {
			return fmt.Errorf("unknown column %q", key)
		}
	}
	for _, c := range t.columns {
		t.values[c] = append(t.values[c], cells[c])
	}
	t.rows++
	return nil
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Column returns the values of one column, or nil when it does not exist
func (t *Table) Column(name string) []interface{} {
	return t.values[name]
}

// Cell returns the value at row i of a column
func (t *Table) Cell(row int, column string) interface{} {
	col := t.values[column]
	if row < 0 || row >= len(col) {
		return nil
	}
	return col[row]
}

// Row returns row i as a slice ordered like Columns
func (t *Table) Row(i int) []interface{} {
	row := make([]interface{}, len(t.columns))
	for j, c := range t.columns {
		row[j] = t.values[c][i]
	}
	return row
}

// Records returns the table row by row, one map per row.
func (t *Table) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, t.rows)
	for i := 0; i < t.rows; i++ {
		rec := make(map[string]interface{}, len(t.columns))
		for _, c := range t.columns {
			rec[c] = t.values[c][i]
		}
		records[i] = rec
	}
	return records
}

// MarshalJSON encodes the table as {"column": [values...], ...} in column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		vals := t.values[c]
		if vals == nil {
			vals = []interface{}{}
		}
		encoded, err := json.Marshal(vals)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
