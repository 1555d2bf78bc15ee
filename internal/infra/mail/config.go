// Package mail implements the email dispatcher and its transports.
// Integration rows carry provider specific settings in a JSONB config map;
// the helpers here read them defensively.
package mail

import "strconv"

func stringOpt(cfg map[string]any, key string) string {
	if cfg == nil {
		return ""
	}
	s, _ := cfg[key].(string)

	return s
}

func intOpt(cfg map[string]any, key string) int {
	if cfg == nil {
		return 0
	}
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)

		return n
	default:
		return 0
	}
}

func boolOpt(cfg map[string]any, key string) bool {
	if cfg == nil {
		return false
	}
	switch v := cfg[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)

		return b
	default:
		return false
	}
}
