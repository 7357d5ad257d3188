package dataset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"hypotest/domain/analysis"
	"hypotest/internal/errors"
)

// Frame is an uploaded table: a header row and string cells, one slice per data row.
// Rows may be shorter than Headers; absent trailing cells read as empty.
type Frame struct {
	Headers []string
	Rows    [][]string
}

// NewFrame builds a frame from a header row and data rows, trimming whitespace.
func NewFrame(headers []string, rows [][]string) *Frame {
	f := &Frame{Headers: make([]string, len(headers)), Rows: make([][]string, 0, len(rows))}
	for i, h := range headers {
		f.Headers[i] = strings.TrimSpace(h)
	}
	for _, row := range rows {
		clean := make([]string, len(row))
		for j, cell := range row {
			clean[j] = strings.TrimSpace(cell)
		}
		f.Rows = append(f.Rows, clean)
	}
	return f
}

// ColumnIndex returns the position of a named column or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column exists
func (f *Frame) HasColumns(names ...string) bool {
	for _, n := range names {
		if f.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// Cell returns the raw value at (row, col), empty when the row is short
func (f *Frame) Cell(row, col int) string {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row]) {
		return ""
	}
	return f.Rows[row][col]
}

// NumericColumn returns column col as a Sample with missing cells dropped.
// A cell that is neither missing nor numeric is invalid input.
func (f *Frame) NumericColumn(col int) (analysis.Sample, error) {
	if col < 0 || col >= len(f.Headers) {
		return analysis.Sample{}, errors.InvalidInput(fmt.Sprintf("column index %d out of range", col))
	}
	sample := analysis.Sample{Name: f.Headers[col], Values: make([]float64, 0, len(f.Rows))}
	for i := range f.Rows {
		v, ok, err := ParseNumeric(f.Cell(i, col))
		if err != nil {
			return analysis.Sample{}, errors.InvalidInput(fmt.Sprintf("column %q row %d: %v", f.Headers[col], i+2, err))
		}
		if ok {
			sample.Values = append(sample.Values, v)
		}
	}
	return sample, nil
}

// GroupedColumn splits a numeric column by the labels of a group column.
// Groups keep first-appearance order. Rows with an empty label are skipped;
// missing scores are dropped but their group is still registered.
func (f *Frame) GroupedColumn(groupCol, valueCol string) ([]analysis.Sample, error) {
	gi, vi := f.ColumnIndex(groupCol), f.ColumnIndex(valueCol)
	if gi < 0 || vi < 0 {
		return nil, errors.MissingRequiredColumns(fmt.Sprintf("columns %q and %q are required", groupCol, valueCol))
	}

	var groups []analysis.Sample
	index := make(map[string]int)
	for i := range f.Rows {
		label := f.Cell(i, gi)
		if label == "" {
			continue
		}
		pos, seen := index[label]
		if !seen {
			pos = len(groups)
			index[label] = pos
			groups = append(groups, analysis.Sample{Name: label})
		}

		v, ok, err := ParseNumeric(f.Cell(i, vi))
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q row %d: %v", valueCol, i+2, err))
		}
		if ok {
			groups[pos].Values = append(groups[pos].Values, v)
		}
	}
	return groups, nil
}

var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
}

// Commas are only accepted as thousands separators ("12,345.6"), never as a decimal mark.
var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseNumeric parses a spreadsheet cell. ok is false for missing markers.
// Infinite values are not numbers here.
func ParseNumeric(cell string) (value float64, ok bool, err error) {
	s := strings.TrimSpace(cell)
	if missingMarkers[strings.ToLower(s)] {
		return 0, false, nil
	}
	digits := s
	if strings.Contains(s, ",") {
		if !thousandsGrouped.MatchString(s) {
			return 0, false, fmt.Errorf("%q is not a number", s)
		}
		digits = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%q is not a number", s)
	}
	return v, true, nil
}
