package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"databridgeapi/models"
)

// defaultDateLayouts are tried in order when a format_date transform carries
// no explicit source layouts.
var defaultDateLayouts = []string{
	"2006-01-02", "2006-01-02 15:04:05", "02.01.2006", "02/01/2006", "2006/01/02", "20060102",
}

// dateTransformConfig is the JSON shape of a format_date TransformConfig.
type dateTransformConfig struct {
	From []string `json:"from"` // source layouts tried in order
	To   string   `json:"to"`   // output layout, default ISO date
}

// ApplyTransform applies one field transform to a source value. Empty input
// passes through untouched regardless of the transform.
func ApplyTransform(value, kind, config string) (string, error) {
	if value == "" {
		return "", nil
	}
	switch kind {
	case "", models.TransformNone, models.TransformLookup:
		return value, nil
	case models.TransformUppercase:
		return strings.ToUpper(value), nil
	case models.TransformLowercase:
		return strings.ToLower(value), nil
	case models.TransformTrim:
		return strings.TrimSpace(value), nil
	case models.TransformFormatDate:
		return formatDate(value, config)
	default:
		return "", fmt.Errorf("unknown transform: %s", kind)
	}
}

func formatDate(value, config string) (string, error) {
	cfg := dateTransformConfig{}
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return "", fmt.Errorf("invalid date transform config: %w", err)
		}
	}
	layouts := cfg.From
	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}
	out := cfg.To
	if out == "" {
		out = "2006-01-02"
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t.Format(out), nil
		}
	}
	return "", fmt.Errorf("value %q matches no date layout", value)
}
