package reference

import (
	"errors"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// ErrUnrecognized is returned for field values that hold no recognizable
// path encoding. Callers treat it as "no reference".
var ErrUnrecognized = errors.New("unrecognized reference encoding")

// braceToken matches one element of a relational array literal: a quoted
// token with backslash escapes, or a bare run up to the next comma.
var braceToken = regexp.MustCompile(`"((?:\\.|[^"\\])*)"|([^,]+)`)

// Parse extracts the raw path tokens held by a reference field value. The
// encodings are tried in order: native collection, JSON array, JSON string,
// brace-delimited token list, and finally the whole value as one literal.
// Tokens are returned unnormalized; nil and blank values yield none.
func Parse(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return parseText(t), nil
	case []byte:
		return parseText(string(t)), nil
	case *string:
		if t == nil {
			return nil, nil
		}
		return parseText(*t), nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		return flatten(t), nil
	default:
		return nil, ErrUnrecognized
	}
}

func flatten(items []any) []string {
	var out []string
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case []any:
			out = append(out, flatten(t)...)
		}
	}
	return out
}

func parseText(s string) []string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		switch t := decoded.(type) {
		case []any:
			return flatten(t)
		case string:
			return []string{t}
		}
	}

	candidate := raw
	if len(candidate) >= 2 && strings.HasPrefix(candidate, `"`) && strings.HasSuffix(candidate, `"`) {
		candidate = candidate[1 : len(candidate)-1]
	}
	if len(candidate) >= 2 && strings.HasPrefix(candidate, "{") && strings.HasSuffix(candidate, "}") {
		return parseBraces(candidate[1 : len(candidate)-1])
	}
	return []string{candidate}
}

func parseBraces(inner string) []string {
	var out []string
	for _, m := range braceToken.FindAllStringSubmatchIndex(inner, -1) {
		if m[2] >= 0 {
			out = append(out, strings.ReplaceAll(inner[m[2]:m[3]], `\"`, `"`))
			continue
		}
		token := inner[m[4]:m[5]]
		// An unquoted NULL is an absent element, not a path.
		if strings.EqualFold(strings.TrimSpace(token), "null") {
			continue
		}
		out = append(out, token)
	}
	return out
}
