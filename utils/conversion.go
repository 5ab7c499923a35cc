package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ValueToString renders a fetched cell value as text. Database drivers return
// []byte for text columns and the JSON decoder returns float64 for numbers, so
// every consumer of row maps funnels values through here.
func ValueToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsMissing reports whether a cell value counts as absent for nullability and
// lookup purposes.
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	return ValueToString(v) == ""
}
