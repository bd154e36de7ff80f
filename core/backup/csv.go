package backup

import (
	"bytes"
	"encoding/csv"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"site-janitor/core/catalog"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// TimestampLayout is the layout of every date-time value in a dump.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	unsafeHeaderChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	datePattern       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clockPattern      = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
)

// SanitizeHeader replaces every character outside [A-Za-z0-9_-] with "_".
func SanitizeHeader(h string) string {
	return unsafeHeaderChars.ReplaceAllString(h, "_")
}

// HeaderNames sanitizes headers and suffixes repeats: the second "a" becomes
// "a_2", the third "a_3". A suffix already in use is skipped, so every
// returned name is unique. An empty name becomes "column".
func HeaderNames(headers []string) []string {
	used := make(map[string]struct{}, len(headers))
	next := make(map[string]int)
	out := make([]string, len(headers))
	for i, h := range headers {
		base := SanitizeHeader(h)
		if base == "" {
			base = "column"
		}
		name := base
		if _, taken := used[name]; taken {
			n := max(next[base], 2)
			for {
				name = base + "_" + strconv.Itoa(n)
				if _, taken := used[name]; !taken {
					break
				}
				n++
			}
			next[base] = n + 1
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// GatherHeaders returns the union of the keys of rows in first-seen order.
func GatherHeaders(rows []catalog.Row) []string {
	seen := orderedmap.NewOrderedMap[string, struct{}]()
	for _, row := range rows {
		if row == nil {
			continue
		}
		for el := row.Front(); el != nil; el = el.Next() {
			if _, ok := seen.Get(el.Key); !ok {
				seen.Set(el.Key, struct{}{})
			}
		}
	}

	headers := make([]string, 0, seen.Len())
	for el := seen.Front(); el != nil; el = el.Next() {
		headers = append(headers, el.Key)
	}
	return headers
}

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func isLikelyDateTime(s string) bool {
	return datePattern.MatchString(s) && clockPattern.MatchString(s)
}

// NormalizeValue renders a catalog value as CSV text. Nil and non-finite
// numbers become empty, times and date-time strings use TimestampLayout in
// UTC, and nested values are encoded as JSON.
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeString(t)
	case []byte:
		return normalizeString(string(t))
	case time.Time:
		return FormatTimestamp(t)
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatTimestamp(*t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return cast.ToString(t)
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return ""
		}
		return cast.ToString(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(t)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		b, err := json.Marshal(v)
		if err == nil {
			return string(b)
		}
	}
	return cast.ToString(v)
}

func normalizeString(s string) string {
	if isLikelyDateTime(s) {
		if parsed, err := cast.ToTimeE(s); err == nil {
			return FormatTimestamp(parsed)
		}
	}
	return s
}

// BuildCSV serializes rows under headers. Cells are looked up by the
// original header and written under its sanitized name.
func BuildCSV(rows []catalog.Row, headers []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(HeaderNames(headers)); err != nil {
		return nil, err
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = ""
			if row == nil {
				continue
			}
			if v, ok := row.Get(h); ok {
				record[i] = NormalizeValue(v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
