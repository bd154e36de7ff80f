package utils

import (
	"strings"

	"github.com/spf13/cast"
)

// ToString converts catalog and request values to string. Nil yields "" and
// byte slices are read as text.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return cast.ToString(v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true", "yes").
func ToBool(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case string:
		return parseBoolString(v)
	case []byte:
		return parseBoolString(string(v))
	default:
		return cast.ToInt(v) == 1 || cast.ToBool(v)
	}
}

func parseBoolString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
