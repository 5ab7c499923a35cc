package source

import (
	"fmt"

	"databridgeapi/models"
)

// TestResult is the outcome of a connectivity probe. Failures are data, not
// errors: a refused connection comes back as Success=false with the reason.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchResult is a batch of source rows plus the deterministic column order
// they arrived in. Row maps alone cannot carry order, so adapters record it.
type FetchResult struct {
	Rows    []map[string]interface{}
	Columns []string
}

// Adapter extracts rows from one kind of external source. Implementations
// never write anywhere; fetched rows are handed to the staging loader.
type Adapter interface {
	// TestConnection probes the source without transferring data.
	TestConnection() TestResult
	// FetchSample reads up to limit rows for column detection.
	FetchSample(limit int) (*FetchResult, error)
	// FetchAll reads the full result set, honoring the query's own row limit.
	FetchAll() (*FetchResult, error)
}

// ForConnection returns the adapter for the connection's kind. The query may
// be nil for bare connectivity tests on web-service and database sources; file
// sources carry their payload on the query and require one.
func ForConnection(conn *models.Connection, query *models.SourceQuery) (Adapter, error) {
	switch conn.Kind {
	case models.ConnectionKindOData:
		return newODataAdapter(conn, query), nil
	case models.ConnectionKindSQLDB:
		return newSQLDBAdapter(conn, query), nil
	case models.ConnectionKindFile:
		if query == nil {
			return nil, fmt.Errorf("file connections need a source query with an uploaded file")
		}
		return newFileAdapter(conn, query)
	default:
		return nil, fmt.Errorf("unsupported connection kind: %s", conn.Kind)
	}
}

// mergeColumns appends row keys to the ordered column list, keeping first-seen
// order stable across identical inputs.
func mergeColumns(ordered []string, seen map[string]bool, rowKeys []string) []string {
	for _, k := range rowKeys {
		if !seen[k] {
			seen[k] = true
			ordered = append(ordered, k)
		}
	}
	return ordered
}
