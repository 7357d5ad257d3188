package excel

import (
	"fmt"
	"io"

	"hypotest/domain/analysis"
	"hypotest/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// ResultSheet is the sheet every result workbook is written to
const ResultSheet = "Sheet1"

// PostHocTitle heads the post-hoc block below an ANOVA pretest table
const PostHocTitle = "Post-hoc comparisons"

// The post-hoc title is merged across the first five columns.
const postHocTitleLastColumn = 5

// WriteResult renders a result as an xlsx workbook into w
func WriteResult(w io.Writer, res *analysis.Result) error {
	f, err := buildResultWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write result workbook: %w", err)
	}
	return nil
}

// SaveResult renders a result as an xlsx workbook at path
func SaveResult(path string, res *analysis.Result) error {
	f, err := buildResultWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save result workbook %s: %w", path, err)
	}
	return nil
}

// buildResultWorkbook lays out the main table from A1. When a post-hoc table
// exists it follows one blank row later: a merged title row, a header row,
// then the comparisons, all centered.
func buildResultWorkbook(res *analysis.Result) (*excelize.File, error) {
	if res == nil || res.Table == nil {
		return nil, fmt.Errorf("result has no table to write")
	}

	f := excelize.NewFile()
	styles, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTable(f, res.Table, 1, styles.header, 0); err != nil {
		f.Close()
		return nil, err
	}

	if res.PostHoc != nil {
		titleRow := res.Table.Len() + 3
		first, _ := excelize.CoordinatesToCellName(1, titleRow)
		last, _ := excelize.CoordinatesToCellName(postHocTitleLastColumn, titleRow)
		if err := f.SetCellValue(ResultSheet, first, PostHocTitle); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.MergeCell(ResultSheet, first, last); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(ResultSheet, first, last, styles.header); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeTable(f, res.PostHoc, titleRow+1, styles.header, styles.centered); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

type sheetStyles struct {
	header   int
	centered int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create cell style: %w", err)
	}
	return sheetStyles{header: header, centered: centered}, nil
}

// writeTable writes the header at startRow and one row per table row below it.
// nil cells are left empty. A zero cellStyle leaves data cells unstyled.
func writeTable(f *excelize.File, t *analysis.Table, startRow, headerStyle, cellStyle int) error {
	columns := t.Columns()
	for c, name := range columns {
		cell, err := excelize.CoordinatesToCellName(c+1, startRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ResultSheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(ResultSheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r := 0; r < t.Len(); r++ {
		row := t.Row(r)
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, startRow+1+r)
			if err != nil {
				return err
			}
			if v != nil {
				if err := f.SetCellValue(ResultSheet, cell, v); err != nil {
					return err
				}
			}
			if cellStyle != 0 {
				if err := f.SetCellStyle(ResultSheet, cell, cell, cellStyle); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SaveFrame writes a frame to an xlsx file on Sheet1. Numeric cells are
// stored as numbers and missing markers as empty cells.
func SaveFrame(path string, frame *dataset.Frame) error {
	f := excelize.NewFile()
	defer f.Close()

	for c, h := range frame.Headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(ResultSheet, cell, h); err != nil {
			return err
		}
	}
	for r := range frame.Rows {
		for c := range frame.Headers {
			raw := frame.Cell(r, c)
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			v, ok, err := dataset.ParseNumeric(raw)
			switch {
			case err != nil:
				err = f.SetCellValue(ResultSheet, cell, raw)
			case ok:
				err = f.SetCellValue(ResultSheet, cell, v)
			}
			if err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
