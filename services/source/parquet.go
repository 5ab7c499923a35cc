package source

import (
	"encoding/json"
	"fmt"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"
)

// parseParquet reads an uploaded parquet file through an in-memory source.
// Rows come back as generated structs, so they pass through a JSON round trip
// to become the row maps the rest of the pipeline expects.
func (a *fileAdapter) parseParquet(maxRows int) (*FetchResult, error) {
	fr, err := buffer.NewBufferFile(a.query.FileData)
	if err != nil {
		return nil, fmt.Errorf("opening parquet buffer for %s: %w", a.query.FileName, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("reading parquet schema of %s: %w", a.query.FileName, err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	if maxRows > 0 && maxRows < num {
		num = maxRows
	}
	raw, err := pr.ReadByNumber(num)
	if err != nil {
		return nil, fmt.Errorf("reading parquet rows of %s: %w", a.query.FileName, err)
	}

	result := &FetchResult{}
	seen := map[string]bool{}
	for _, item := range raw {
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		row := map[string]interface{}{}
		if err := json.Unmarshal(encoded, &row); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
		result.Columns = mergeColumns(result.Columns, seen, sortedDataKeys(row))
	}
	return result, nil
}
