package source

import (
	"bytes"
	"fmt"
	"strconv"

	"gitee.com/gooffice/gooffice/spreadsheet"
)

// parseSpreadsheet reads the configured sheet of an uploaded workbook. The
// first row is the header when configured; otherwise positional column names
// are generated.
func (a *fileAdapter) parseSpreadsheet(maxRows int) (*FetchResult, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(a.query.FileData), int64(len(a.query.FileData)))
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", a.query.FileName, err)
	}
	defer wb.Close()

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", a.query.FileName)
	}
	sheet := sheets[0]
	if a.config.Sheet != "" {
		found := false
		for _, s := range sheets {
			if s.Name() == a.config.Sheet {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found in %s", a.config.Sheet, a.query.FileName)
		}
	}

	var records [][]string
	for _, row := range sheet.Rows() {
		var rec []string
		for _, cell := range row.Cells() {
			rec = append(rec, cell.GetFormattedValue())
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return &FetchResult{}, nil
	}

	var header []string
	if a.config.HasHeader {
		header = records[0]
		records = records[1:]
	} else {
		for i := range records[0] {
			header = append(header, "column_"+strconv.Itoa(i+1))
		}
	}
	return recordsToResult(header, records, maxRows), nil
}
