// Package memstore is an in-memory storage.Store used by tests across the
// service. It lists like the hosted store: direct children only, ordered by
// name, folders inferred from path prefixes.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"site-janitor/core/storage"
)

// Object is a stored leaf.
type Object struct {
	Data      []byte
	UpdatedAt time.Time
}

// ListCall records one List invocation.
type ListCall struct {
	Prefix string
	Opts   storage.ListOptions
}

// Store is an in-memory storage.Store with failure injection.
type Store struct {
	mu      sync.Mutex
	objects map[string]Object
	base    string

	// ListErrors fails List for the given prefix.
	ListErrors map[string]error
	// DownloadErrors fails Download for the given path.
	DownloadErrors map[string]error
	// RemoveErrors fails the n-th (1-based) Remove call.
	RemoveErrors map[int]error

	ListCalls   []ListCall
	RemoveCalls [][]string
}

// New creates an empty store whose public addresses start with base.
func New(base string) *Store {
	return &Store{
		objects:        make(map[string]Object),
		base:           strings.TrimRight(base, "/"),
		ListErrors:     make(map[string]error),
		DownloadErrors: make(map[string]error),
		RemoveErrors:   make(map[int]error),
	}
}

// Put stores data under path.
func (s *Store) Put(path string, data []byte, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[strings.Trim(path, "/")] = Object{Data: data, UpdatedAt: updatedAt}
}

// Has reports whether path is stored.
func (s *Store) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// Len returns the number of stored leaves.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context, prefix string, opts storage.ListOptions) ([]storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix = strings.Trim(prefix, "/")
	s.ListCalls = append(s.ListCalls, ListCall{Prefix: prefix, Opts: opts})
	if err, ok := s.ListErrors[prefix]; ok {
		return nil, err
	}

	scope := prefix
	if scope != "" {
		scope += "/"
	}

	folders := make(map[string]struct{})
	var entries []storage.Entry
	for path, obj := range s.objects {
		if !strings.HasPrefix(path, scope) {
			continue
		}
		rest := path[len(scope):]
		if i := strings.Index(rest, "/"); i >= 0 {
			folders[rest[:i]] = struct{}{}
			continue
		}
		size := int64(len(obj.Data))
		updated := obj.UpdatedAt
		entries = append(entries, storage.Entry{
			Name:      rest,
			ID:        "id:" + path,
			Size:      &size,
			UpdatedAt: &updated,
		})
	}
	for name := range folders {
		entries = append(entries, storage.Entry{Name: name})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	if opts.Offset >= len(entries) {
		return []storage.Entry{}, nil
	}
	entries = entries[opts.Offset:]
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

// Remove implements storage.Store.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RemoveCalls = append(s.RemoveCalls, append([]string(nil), paths...))
	if err, ok := s.RemoveErrors[len(s.RemoveCalls)]; ok {
		return err
	}
	for _, p := range paths {
		delete(s.objects, p)
	}
	return nil
}

// Download implements storage.Store.
func (s *Store) Download(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.DownloadErrors[path]; ok {
		return nil, err
	}
	obj, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %q not found", path)
	}
	return append([]byte(nil), obj.Data...), nil
}

// PublicURL implements storage.Store.
func (s *Store) PublicURL(path string) string {
	return s.base + "/" + path
}
