package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hypotest/domain/dataset"
	"hypotest/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Supported upload formats
const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"
)

// FileType maps a file name to a supported format by its extension
func FileType(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FileTypeXLSX, nil
	case ".csv":
		return FileTypeCSV, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported file type %q, expected .xlsx or .csv", filepath.Ext(name)))
}

// DataReader reads an uploaded table from an Excel workbook or a CSV file
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a reader for a file on disk, choosing the format by extension
func NewDataReader(filePath string) (*DataReader, error) {
	fileType, err := FileType(filePath)
	if err != nil {
		return nil, err
	}
	return &DataReader{filePath: filePath, fileType: fileType}, nil
}

// ReadFrame reads the whole file into a frame
func (r *DataReader) ReadFrame() (*dataset.Frame, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
		}
		return nil, errors.Wrap(err, "failed to open data file")
	}
	defer file.Close()
	return ReadFrame(file, r.fileType)
}

// ReadFrame parses a table from rd. The first row is the header.
func ReadFrame(rd io.Reader, fileType string) (*dataset.Frame, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case FileTypeXLSX:
		rows, err = readWorkbookRows(rd)
	case FileTypeCSV:
		rows, err = readCSVRows(rd)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", fileType))
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(fileType)))
	}

	frame := dataset.NewFrame(rows[0], rows[1:])
	log.Printf("[DataReader] %s parsed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(fileType), float64(time.Since(start).Nanoseconds())/1e6, len(frame.Headers), len(frame.Rows))
	return frame, nil
}

// readWorkbookRows reads the first sheet with raw cell values, so number
// formats such as thousands separators or percentages do not leak into the data.
func readWorkbookRows(rd io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidInput, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidInput, fmt.Sprintf("failed to read sheet %q", sheets[0]))
	}
	return rows, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSVRows(rd io.Reader) ([][]string, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV upload")
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidInput, "failed to read CSV file")
	}
	return rows, nil
}
