package reference

import (
	"errors"
	"sort"

	"site-janitor/core/catalog"
	"site-janitor/core/paths"
	"site-janitor/core/utils"

	"go.uber.org/zap"
)

// Set is a deduplicated collection of normalized paths.
type Set struct {
	paths map[string]struct{}
	// Entities is the number of rows read.
	Entities int
	// Skipped counts field values with no recognizable encoding.
	Skipped int
}

// NewSet returns a Set holding the given normalized paths.
func NewSet(items ...string) *Set {
	s := &Set{paths: make(map[string]struct{}, len(items))}
	for _, p := range items {
		if p != "" {
			s.paths[p] = struct{}{}
		}
	}
	return s
}

// Has reports whether p is referenced.
func (s *Set) Has(p string) bool {
	_, ok := s.paths[p]
	return ok
}

// Len returns the number of distinct referenced paths.
func (s *Set) Len() int {
	return len(s.paths)
}

// Paths returns the referenced paths in ascending order.
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Builder extracts references from catalog rows.
type Builder struct {
	normalizer *paths.Normalizer
	fields     []string
	idColumn   string
	logger     *zap.Logger
}

// NewBuilder creates a Builder reading the given fields of each row.
func NewBuilder(normalizer *paths.Normalizer, fields []string, idColumn string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		normalizer: normalizer,
		fields:     fields,
		idColumn:   idColumn,
		logger:     logger,
	}
}

// Build returns the normalized reference set of rows. Unparseable values are
// logged and counted, never fatal.
func (b *Builder) Build(rows []catalog.Row) *Set {
	set := NewSet()
	for _, row := range rows {
		set.Entities++
		for _, field := range b.fields {
			value, ok := row.Get(field)
			if !ok {
				continue
			}
			tokens, err := Parse(value)
			if err != nil {
				if errors.Is(err, ErrUnrecognized) {
					set.Skipped++
					id, _ := row.Get(b.idColumn)
					b.logger.Debug("Skipping unrecognized reference value",
						zap.String("entity", utils.ToString(id)),
						zap.String("field", field),
						zap.Any("value", value))
				}
				continue
			}
			for _, token := range tokens {
				if p := b.normalizer.Normalize(token); p != "" {
					set.paths[p] = struct{}{}
				}
			}
		}
	}
	return set
}
