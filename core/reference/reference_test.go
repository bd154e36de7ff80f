package reference

import (
	"strings"
	"testing"

	"site-janitor/core/catalog"
	"site-janitor/core/paths"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s := "alice/a.png"
	var nilString *string

	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"Nil", nil, nil},
		{"NilPointer", nilString, nil},
		{"Blank", "   ", nil},
		{"Literal", "alice/a.png", []string{"alice/a.png"}},
		{"Pointer", &s, []string{"alice/a.png"}},
		{"Bytes", []byte(`["a","b"]`), []string{"a", "b"}},
		{"NativeStrings", []string{"a", "b"}, []string{"a", "b"}},
		{"NativeNested", []any{"a", []any{"b", 3}, nil}, []string{"a", "b"}},
		{"JSONArray", `["alice/1.png", "alice/2.png"]`, []string{"alice/1.png", "alice/2.png"}},
		{"JSONArraySkipsNonStrings", `["a", 1, null, {"k":"v"}]`, []string{"a"}},
		{"JSONString", `"alice/hero.png"`, []string{"alice/hero.png"}},
		{"Braces", `{alice/1.png,alice/2.png}`, []string{"alice/1.png", "alice/2.png"}},
		{"BracesQuoted", `{"a,b.png","say \"hi\".png"}`, []string{"a,b.png", `say "hi".png`}},
		{"BracesNull", `{a.png,NULL}`, []string{"a.png"}},
		{"QuotedBraces", `"{"a.png","b.png"}"`, []string{"a.png", "b.png"}},
		{"JSONStringOfBraces", `"{a.png,b.png}"`, []string{"{a.png,b.png}"}},
		{"EmptyBraces", `{}`, nil},
		{"BrokenJSON", `["a.png"`, []string{`["a.png"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	for _, v := range []any{42, 3.5, true, map[string]any{"a": "b"}} {
		got, err := Parse(v)
		assert.ErrorIs(t, err, ErrUnrecognized)
		assert.Nil(t, got)
	}
}

func encodeBraces(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = `"` + strings.ReplaceAll(item, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

func TestParseEncodingsAgree(t *testing.T) {
	n := paths.NewNormalizer("site-assets", "storage/v1/object/public")
	items := []string{
		"alice/s1/gallery/1.png",
		"/site-assets/alice/s1/logo.png",
		"https://cdn.example/storage/v1/object/public/site-assets/bob/x y.png",
		`odd,"name".png`,
	}

	normalizeAll := func(tokens []string) []string {
		var out []string
		for _, tok := range tokens {
			if p := n.Normalize(tok); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	want := normalizeAll(items)

	jsonArray, err := json.Marshal(items)
	require.NoError(t, err)

	encodings := map[string]any{
		"native": items,
		"json":   string(jsonArray),
		"braces": encodeBraces(items),
	}
	for name, encoded := range encodings {
		tokens, err := Parse(encoded)
		require.NoError(t, err, name)
		assert.Equal(t, want, normalizeAll(tokens), name)
	}

	for _, item := range items[:3] {
		jsonString, err := json.Marshal(item)
		require.NoError(t, err)

		for _, encoded := range []string{item, string(jsonString)} {
			tokens, err := Parse(encoded)
			require.NoError(t, err)
			assert.Equal(t, []string{n.Normalize(item)}, normalizeAll(tokens), encoded)
		}
	}
}

func row(kv ...any) catalog.Row {
	r := catalog.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func TestBuild(t *testing.T) {
	n := paths.NewNormalizer("site-assets", "storage/v1/object/public")
	b := NewBuilder(n, []string{"logo", "hero", "gallery"}, "id", nil)

	rows := []catalog.Row{
		row("id", "s1", "logo", "site-assets/alice/logo.png", "hero", nil, "gallery", `["alice/g1.png","alice/g2.png"]`),
		row("id", "s2", "logo", "alice/logo.png", "hero", "{bob/h.png}", "gallery", 17),
		row("id", "s3", "logo", "", "gallery", []any{"  "}),
	}

	set := b.Build(rows)
	assert.Equal(t, []string{"alice/g1.png", "alice/g2.png", "alice/logo.png", "bob/h.png"}, set.Paths())
	assert.Equal(t, 4, set.Len())
	assert.True(t, set.Has("bob/h.png"))
	assert.False(t, set.Has("site-assets/alice/logo.png"))
	assert.Equal(t, 3, set.Entities)
	assert.Equal(t, 1, set.Skipped)
}

func TestNewSet(t *testing.T) {
	s := NewSet("a", "", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Paths())
}
