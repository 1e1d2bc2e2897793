// Package spreadsheet wraps the XLSX encoding and decoding used by the admin
// export and bulk-import endpoints.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Encode builds a single-sheet workbook from a header row and data rows and
// returns the serialized file.
func Encode(sheetName string, header []string, rows [][]interface{}) ([]byte, error) {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerCells := make([]interface{}, len(header))
	for i, column := range header {
		headerCells[i] = column
	}
	if err := file.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell for row %d: %w", i+2, err)
		}
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decode reads the first sheet of a workbook and returns its header row and
// data rows as strings. Trailing empty cells are preserved as returned by the
// underlying reader.
func Decode(reader io.Reader) ([]string, [][]string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	return rows[0], rows[1:], nil
}
