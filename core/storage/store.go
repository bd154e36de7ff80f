package storage

import (
	"context"
	"time"
)

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 1000

// Entry is one row of a single-level listing.
// Leaves carry a store-assigned ID; folders are inferred prefixes and have none.
type Entry struct {
	Name      string
	ID        string
	Size      *int64
	UpdatedAt *time.Time
}

// IsLeaf reports whether the entry is a stored object rather than a folder.
func (e Entry) IsLeaf() bool {
	return e.ID != ""
}

// ListOptions selects one page of a listing ordered by name ascending.
type ListOptions struct {
	Limit  int
	Offset int
}

// Object is an entry resolved to its full path during a walk.
type Object struct {
	Path      string     `json:"path"`
	IsLeaf    bool       `json:"is_leaf"`
	Size      *int64     `json:"size,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Store is the object store contract consumed by the walker, the deleter and
// the backup exporter.
type Store interface {
	// List returns one page of the direct children of prefix.
	List(ctx context.Context, prefix string, opts ListOptions) ([]Entry, error)
	// Remove deletes the given leaf paths in one request.
	Remove(ctx context.Context, paths []string) error
	// Download returns the full content of a leaf.
	Download(ctx context.Context, path string) ([]byte, error)
	// PublicURL returns the address the object is publicly served from.
	PublicURL(path string) string
}
