package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"databridgeapi/models"
)

// fileAdapter parses an uploaded file stored on the source query. The format
// is chosen by file extension: delimited text, spreadsheet or parquet.
type fileAdapter struct {
	conn   *models.Connection
	query  *models.SourceQuery
	config models.FileParseConfig
}

func newFileAdapter(conn *models.Connection, query *models.SourceQuery) (*fileAdapter, error) {
	a := &fileAdapter{conn: conn, query: query}
	if query.FileConfig != "" {
		if err := json.Unmarshal([]byte(query.FileConfig), &a.config); err != nil {
			return nil, fmt.Errorf("invalid file parse config: %w", err)
		}
	} else {
		a.config.HasHeader = true
	}
	return a, nil
}

func (a *fileAdapter) TestConnection() TestResult {
	if len(a.query.FileData) == 0 {
		return TestResult{Success: false, Message: "no file uploaded for this query"}
	}
	if _, err := a.parse(1); err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}
	return TestResult{Success: true, Message: fmt.Sprintf("file %s parsed", a.query.FileName)}
}

func (a *fileAdapter) FetchSample(limit int) (*FetchResult, error) {
	return a.parse(limit)
}

func (a *fileAdapter) FetchAll() (*FetchResult, error) {
	return a.parse(a.query.RowLimit)
}

func (a *fileAdapter) parse(maxRows int) (*FetchResult, error) {
	if len(a.query.FileData) == 0 {
		return nil, fmt.Errorf("no file uploaded for query %s", a.query.Code)
	}
	switch strings.ToLower(filepath.Ext(a.query.FileName)) {
	case ".xlsx", ".xls":
		return a.parseSpreadsheet(maxRows)
	case ".parquet":
		return a.parseParquet(maxRows)
	default:
		// .csv, .txt, .tsv and anything unrecognized parse as delimited text.
		return a.parseDelimited(maxRows)
	}
}

func (a *fileAdapter) parseDelimited(maxRows int) (*FetchResult, error) {
	text, err := DecodeText(a.query.FileData, a.config.Encoding)
	if err != nil {
		return nil, err
	}
	delimiter := a.config.Delimiter
	if delimiter == "" {
		delimiter = sniffDelimiter(text)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = []rune(delimiter)[0]
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.query.FileName, err)
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

// recordsToResult converts positional string records into row maps. Short
// records leave trailing columns absent, which load as NULL.
func recordsToResult(header []string, records [][]string, maxRows int) *FetchResult {
	result := &FetchResult{Columns: append([]string(nil), header...)}
	for _, rec := range records {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			break
		}
		row := make(map[string]interface{}, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

// sniffDelimiter picks the candidate separator that occurs most often in the
// first line. Comma wins ties, matching its position in the candidate list.
func sniffDelimiter(text string) string {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ",", 0
	for _, cand := range []string{",", ";", "\t", "|"} {
		if n := strings.Count(line, cand); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}
