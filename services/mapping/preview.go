package mapping

import (
	"fmt"
)

// PreviewRow pairs one source row with its transformed target-field values, or
// the transform error that stopped it.
type PreviewRow struct {
	Source map[string]interface{} `json:"source"`
	Target map[string]string      `json:"target,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// Preview transforms the first rows of the mapping's source table without
// writing anything, so a definition can be checked before execution.
func (e *Engine) Preview(mappingID uint, limit int) ([]PreviewRow, error) {
	mapping, fields, err := e.loadDefinition(mappingID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 10
	}
	batch, err := e.dynRepo.SelectBatch(nil, mapping.SourceTable, sourceColumns(fields), 0, limit)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", mapping.SourceTable, err)
	}

	out := make([]PreviewRow, 0, len(batch))
	for _, row := range batch {
		preview := PreviewRow{Source: row}
		values, err := transformRow(fields, row)
		if err != nil {
			preview.Error = err.Error()
		} else {
			preview.Target = values
		}
		out = append(out, preview)
	}
	return out, nil
}
