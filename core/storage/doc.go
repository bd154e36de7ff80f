// Package storage provides an abstraction layer for the site asset bucket.
//
// It wraps the MinIO Go client behind the Client interface and exposes the
// Store contract the rest of the service is written against:
//
//   - List: one name-ordered page of the direct children of a prefix.
//     Entries with an ID are leaves; entries without one are folders.
//   - Remove: bulk deletion of leaf paths.
//   - Download: full content of a leaf.
//   - PublicURL: the address an object is served from.
//
// Bucket implements Store for MinIO and S3 compatible services. The
// memstore subpackage provides an in-memory Store for tests, and mocks holds a
// testify mock of Client.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	bucket := storage.NewBucket(client, cfg.Storage)
//	entries, err := bucket.List(ctx, "owner-1", storage.ListOptions{Limit: 1000})
package storage
