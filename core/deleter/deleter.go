package deleter

import (
	"context"
	"fmt"

	"site-janitor/core/metrics"
	"site-janitor/core/storage"
	"site-janitor/core/walker"

	"go.uber.org/zap"
)

// DefaultChunkSize is the maximum number of paths per bulk delete call.
const DefaultChunkSize = 1000

// ChunkError reports the chunk that failed. Index is 1-based.
type ChunkError struct {
	Index int
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("failed to delete chunk %d of %d: %v", e.Index, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Deleter issues chunked bulk deletes against a store.
type Deleter struct {
	store     storage.Store
	chunkSize int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Deleter.
type Option func(*Deleter)

// WithChunkSize sets the chunk size.
func WithChunkSize(n int) Option {
	return func(d *Deleter) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Deleter) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records deletions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Deleter) {
		d.metrics = m
	}
}

// New creates a Deleter.
func New(store storage.Store, opts ...Option) *Deleter {
	d := &Deleter{
		store:     store,
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Chunks splits items into consecutive slices of at most size elements.
func Chunks(items []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// Delete removes paths chunk by chunk and returns a *ChunkError for the first
// chunk that fails.
func (d *Deleter) Delete(ctx context.Context, paths []string) error {
	chunks := Chunks(paths, d.chunkSize)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return &ChunkError{Index: i + 1, Total: len(chunks), Err: err}
		}

		if err := d.store.Remove(ctx, chunk); err != nil {
			d.metrics.ObserveChunkFailure()
			d.logger.Error("Delete chunk failed",
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(chunks)),
				zap.Int("paths", len(chunk)),
				zap.Error(err))
			return &ChunkError{Index: i + 1, Total: len(chunks), Err: err}
		}

		d.metrics.ObserveDeleted(len(chunk))
		d.logger.Info("Deleted chunk",
			zap.Int("chunk", i+1),
			zap.Int("chunks", len(chunks)),
			zap.Int("paths", len(chunk)))
	}
	return nil
}

// ExpandFolders resolves folder paths into the leaf paths they contain,
// empty-directory markers included, so a deleted folder disappears from the
// store. Folders without leaves contribute nothing; a path listed twice is
// kept once.
func ExpandFolders(ctx context.Context, w *walker.Walker, folders []string) ([]string, error) {
	w = w.IncludingPlaceholders()
	seen := make(map[string]struct{})
	var out []string
	for _, folder := range folders {
		leaves, err := w.Leaves(ctx, folder)
		if err != nil {
			return nil, err
		}
		for _, leaf := range leaves {
			if _, ok := seen[leaf.Path]; ok {
				continue
			}
			seen[leaf.Path] = struct{}{}
			out = append(out, leaf.Path)
		}
	}
	return out, nil
}
