package walker

import (
	"context"
	"fmt"
	"iter"

	"site-janitor/core/paths"
	"site-janitor/core/storage"
)

// DefaultPlaceholder is the empty-directory marker written by the hosted store.
const DefaultPlaceholder = ".emptyFolderPlaceholder"

// ListError reports a failed page request.
type ListError struct {
	Prefix string
	Offset int
	Err    error
}

func (e *ListError) Error() string {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "/"
	}
	return fmt.Sprintf("failed to list storage path %q at offset %d: %v", prefix, e.Offset, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// Walker enumerates objects beneath a prefix.
type Walker struct {
	store            storage.Store
	pageSize         int
	placeholder      string
	keepPlaceholders bool
}

// Option configures a Walker.
type Option func(*Walker)

// WithPageSize sets the listing page size.
func WithPageSize(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.pageSize = n
		}
	}
}

// WithPlaceholder sets the name of the empty-directory marker to skip.
func WithPlaceholder(name string) Option {
	return func(w *Walker) {
		if name != "" {
			w.placeholder = name
		}
	}
}

// New creates a Walker over store.
func New(store storage.Store, opts ...Option) *Walker {
	w := &Walker{
		store:       store,
		pageSize:    storage.DefaultPageSize,
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IncludingPlaceholders returns a copy of w that also yields the
// empty-directory markers. Deletion and backup need them; scans do not.
func (w *Walker) IncludingPlaceholders() *Walker {
	c := *w
	c.keepPlaceholders = true
	return &c
}

// PageSize returns the configured page size.
func (w *Walker) PageSize() int {
	return w.pageSize
}

// Walk returns a lazy sequence of every object beneath prefix, folders
// included. Each range over the sequence starts a fresh traversal. On the
// first failed page the sequence yields a *ListError and ends.
func (w *Walker) Walk(ctx context.Context, prefix string) iter.Seq2[storage.Object, error] {
	return func(yield func(storage.Object, error) bool) {
		stack := []string{prefix}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			stop := false
			err := w.pages(ctx, current, func(e storage.Entry) bool {
				obj := w.resolve(current, e)
				if !obj.IsLeaf {
					stack = append(stack, obj.Path)
				}
				if !yield(obj, nil) {
					stop = true
					return false
				}
				return true
			})
			if stop {
				return
			}
			if err != nil {
				yield(storage.Object{}, err)
				return
			}
		}
	}
}

// Leaves collects every leaf beneath prefix. It returns no objects when any
// page fails.
func (w *Walker) Leaves(ctx context.Context, prefix string) ([]storage.Object, error) {
	var leaves []storage.Object
	for obj, err := range w.Walk(ctx, prefix) {
		if err != nil {
			return nil, err
		}
		if obj.IsLeaf {
			leaves = append(leaves, obj)
		}
	}
	return leaves, nil
}

// Children returns every direct child of prefix across all pages, without
// descending into folders.
func (w *Walker) Children(ctx context.Context, prefix string) ([]storage.Object, error) {
	var children []storage.Object
	err := w.pages(ctx, prefix, func(e storage.Entry) bool {
		children = append(children, w.resolve(prefix, e))
		return true
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// pages feeds every entry of prefix to fn, page by page, until a short page,
// an empty page, fn returning false, or an error.
func (w *Walker) pages(ctx context.Context, prefix string, fn func(storage.Entry) bool) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return &ListError{Prefix: prefix, Offset: offset, Err: err}
		}

		page, err := w.store.List(ctx, prefix, storage.ListOptions{Limit: w.pageSize, Offset: offset})
		if err != nil {
			return &ListError{Prefix: prefix, Offset: offset, Err: err}
		}
		if len(page) == 0 {
			return nil
		}

		for _, e := range page {
			if e.Name == "" || (!w.keepPlaceholders && e.Name == w.placeholder) {
				continue
			}
			if !fn(e) {
				return nil
			}
		}

		if len(page) < w.pageSize {
			return nil
		}
		offset += len(page)
	}
}

func (w *Walker) resolve(prefix string, e storage.Entry) storage.Object {
	return storage.Object{
		Path:      paths.Join(prefix, e.Name),
		IsLeaf:    e.IsLeaf(),
		Size:      e.Size,
		UpdatedAt: e.UpdatedAt,
	}
}
