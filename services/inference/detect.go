package inference

import (
	"regexp"
	"strconv"
	"strings"

	"databridgeapi/models"
	"databridgeapi/utils"
)

// DetectedColumn is the result of type inference for one source column.
type DetectedColumn struct {
	SourceName   string   `json:"source_name"`
	TargetName   string   `json:"target_name"`
	DataType     string   `json:"data_type"`
	SampleValues []string `json:"sample_values"`
	Nullable     bool     `json:"nullable"`
	MaxLength    int      `json:"max_length"`
}

const (
	numericThreshold  = 0.9
	temporalThreshold = 0.8
	maxSampleValues   = 5
)

var boolTokens = map[string]bool{
	"true": true, "false": true,
	"1": true, "0": true,
	"yes": true, "no": true,
	// Turkish and German source systems
	"evet": true, "hayır": true, "hayir": true,
	"ja": true, "nein": true,
}

var (
	dateISORe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateDotRe   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	dateSlashRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

	datetimeISORe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:?\d{2})?$`)
	datetimeDotRe   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}[ ]\d{2}:\d{2}(:\d{2})?$`)
	datetimeSlashRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}[ ]\d{2}:\d{2}(:\d{2})?$`)
)

// DetectColumns infers a target column schema from a bounded sample of rows.
// The result is deterministic for identical input: column order follows
// columnNames and every counter is derived from the full non-null value set.
func DetectColumns(rows []map[string]interface{}, columnNames []string) []DetectedColumn {
	out := make([]DetectedColumn, 0, len(columnNames))
	for _, name := range columnNames {
		out = append(out, detectColumn(rows, name))
	}
	return out
}

func detectColumn(rows []map[string]interface{}, name string) DetectedColumn {
	col := DetectedColumn{
		SourceName: name,
		TargetName: SanitizeColumnName(name),
		DataType:   models.DataTypeString,
	}

	var values []string
	for _, row := range rows {
		v, ok := row[name]
		if !ok || utils.IsMissing(v) {
			col.Nullable = true
			continue
		}
		s := utils.ValueToString(v)
		values = append(values, s)
		if len(col.SampleValues) < maxSampleValues {
			col.SampleValues = append(col.SampleValues, s)
		}
		if n := len([]rune(s)); n > col.MaxLength {
			col.MaxLength = n
		}
	}
	if len(values) == 0 {
		col.Nullable = true
		return col
	}

	total := float64(len(values))
	var ints, decs, bools, dates, datetimes int
	for _, s := range values {
		t := strings.TrimSpace(s)
		if isInteger(t) {
			ints++
		}
		if isDecimal(t) {
			decs++
		}
		if boolTokens[strings.ToLower(t)] {
			bools++
		}
		if dateISORe.MatchString(t) || dateDotRe.MatchString(t) || dateSlashRe.MatchString(t) {
			dates++
		}
		if datetimeISORe.MatchString(t) || datetimeDotRe.MatchString(t) || datetimeSlashRe.MatchString(t) {
			datetimes++
		}
	}

	switch {
	case float64(ints)/total >= numericThreshold:
		col.DataType = models.DataTypeInteger
	case float64(decs)/total >= numericThreshold:
		col.DataType = models.DataTypeDecimal
	case float64(bools)/total >= numericThreshold:
		col.DataType = models.DataTypeBoolean
	case float64(dates)/total >= temporalThreshold:
		col.DataType = models.DataTypeDate
	case float64(datetimes)/total >= temporalThreshold:
		col.DataType = models.DataTypeDatetime
	default:
		col.DataType = models.DataTypeString
	}
	return col
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isDecimal accepts dot or comma as the decimal separator.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return err == nil
}
