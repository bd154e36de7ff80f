package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Bucket implements Store on top of a MinIO client for a single bucket.
type Bucket struct {
	client  Client
	name    string
	baseURL string
}

// NewBucket binds a client to one bucket.
func NewBucket(client Client, cfg Config) *Bucket {
	return &Bucket{
		client:  client,
		name:    cfg.Bucket,
		baseURL: cfg.BaseURL(),
	}
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// Check verifies that the bucket exists and the credentials can reach it.
func (b *Bucket) Check(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.name)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", b.name, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", b.name)
	}
	return nil
}

// List returns one page of the direct children of prefix.
// S3 listings are continuation based, so the offset is applied by skipping
// entries of the name-ordered stream; the stream is cancelled once the page is full.
func (b *Bucket) List(ctx context.Context, prefix string, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	listPrefix := strings.Trim(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := b.client.ListObjects(ctx, b.name, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: false,
	})
	// Drain so the lister goroutine can observe the cancellation and exit.
	defer func() {
		cancel()
		for range ch {
		}
	}()

	entries := make([]Entry, 0, limit)
	seen := 0
	for obj := range ch {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", listPrefix, obj.Err)
		}

		name := strings.TrimPrefix(obj.Key, listPrefix)
		if name == "" {
			// The prefix marker object itself.
			continue
		}

		if seen < opts.Offset {
			seen++
			continue
		}
		seen++

		entries = append(entries, toEntry(name, obj))
		if len(entries) == limit {
			break
		}
	}

	return entries, nil
}

func toEntry(name string, obj minio.ObjectInfo) Entry {
	if strings.HasSuffix(name, "/") {
		return Entry{Name: strings.TrimSuffix(name, "/")}
	}

	id := obj.ETag
	if id == "" {
		id = obj.Key
	}
	e := Entry{Name: name, ID: id}
	size := obj.Size
	e.Size = &size
	if !obj.LastModified.IsZero() {
		t := obj.LastModified.UTC()
		e.UpdatedAt = &t
	}
	return e
}

// Remove deletes the given leaf paths using the batch API.
func (b *Bucket) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		objectsCh <- minio.ObjectInfo{Key: p}
	}
	close(objectsCh)

	errorCh := b.client.RemoveObjects(ctx, b.name, objectsCh, minio.RemoveObjectsOptions{})

	var failed []string
	for rerr := range errorCh {
		if rerr.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", rerr.ObjectName, rerr.Err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("batch delete had %d errors: %v", len(failed), failed)
	}
	return nil
}

// Download returns the full content of a leaf.
func (b *Bucket) Download(ctx context.Context, path string) ([]byte, error) {
	reader, err := b.client.GetObject(ctx, b.name, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return data, nil
}

// PublicURL returns the address the object is publicly served from.
func (b *Bucket) PublicURL(path string) string {
	return b.baseURL + "/" + b.name + "/" + strings.TrimLeft(path, "/")
}
