package config

import (
	"fmt"
	"time"
)

// Section data round-trips through JSON, so lists arrive as []any and
// numbers as float64. These helpers accept both decoded and native forms.

func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case nil:
		return nil, true
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// duration reads "1.5s" style strings or a number of milliseconds.
func duration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	case float64:
		return time.Duration(d * float64(time.Millisecond)), nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case time.Duration:
		return d, nil
	}
	return 0, fmt.Errorf("unsupported duration value %v", v)
}
