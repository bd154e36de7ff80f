package maintenance

import (
	"context"
	"sync"
	"testing"
	"time"

	"site-janitor/core/reconcile"
	"site-janitor/core/storage"
	"site-janitor/core/storage/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staleKey struct{}

// racingStore serves listings tagged with staleKey from a frozen copy, and
// holds them until released.
type racingStore struct {
	*memstore.Store
	frozen   *memstore.Store
	entered  chan struct{}
	enter    sync.Once
	gate     chan struct{}
	release  sync.Once
	onRemove func()
}

func (s *racingStore) List(ctx context.Context, prefix string, opts storage.ListOptions) ([]storage.Entry, error) {
	if ctx.Value(staleKey{}) != nil {
		s.enter.Do(func() { close(s.entered) })
		<-s.gate
		return s.frozen.List(ctx, prefix, opts)
	}
	return s.Store.List(ctx, prefix, opts)
}

func (s *racingStore) Remove(ctx context.Context, paths []string) error {
	if f := s.onRemove; f != nil {
		s.onRemove = nil
		f()
	}
	return s.Store.Remove(ctx, paths)
}

func (s *racingStore) open() {
	s.release.Do(func() { close(s.gate) })
}

func seed(s *memstore.Store) {
	s.Put("alice/s1/logo.png", []byte("PNG"), older)
	s.Put("alice/s1/gallery/old.jpg", []byte("JPG"), older)
	s.Put("bob/zzz/x.png", []byte("X"), newer)
}

func redundantPaths(r *reconcile.Report) []string {
	var out []string
	for _, e := range r.Redundant {
		out = append(out, e.Path)
	}
	return out
}

func TestDeleteRescanIgnoresScanStartedBeforeRemoval(t *testing.T) {
	live := memstore.New("http://cdn")
	seed(live)
	frozen := memstore.New("http://cdn")
	seed(frozen)

	store := &racingStore{
		Store:   live,
		frozen:  frozen,
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	defer store.open()

	svc := NewService(store, setupCatalog(t), storage.Config{
		Bucket:          "site-assets",
		PublicPath:      "storage/v1/object/public",
		PageSize:        2,
		DeleteChunkSize: 1,
	}, reconcile.Config{ReservedFolders: []string{"hero", "gallery", "logo"}}, nil, nil)

	ctx := context.Background()
	_, err := svc.Scan(ctx, reconcile.PolicyObjects)
	require.NoError(t, err)

	staleDone := make(chan struct{})
	store.onRemove = func() {
		go func() {
			defer close(staleDone)
			_, _ = svc.Scan(context.WithValue(ctx, staleKey{}, true), reconcile.PolicyObjects)
		}()
		<-store.entered
	}
	// Unblocks a rescan that wrongly joined the stale run.
	timer := time.AfterFunc(500*time.Millisecond, store.open)
	defer timer.Stop()

	result, err := svc.Delete(ctx, reconcile.PolicyObjects, []string{"bob/zzz/x.png"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	require.NotNil(t, result.Report)
	assert.Equal(t, []string{"alice/s1/gallery/old.jpg"}, redundantPaths(result.Report))

	store.open()
	<-staleDone

	snap, err := svc.Snapshot(reconcile.PolicyObjects)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StateReady, snap.State)
	assert.Equal(t, []string{"alice/s1/gallery/old.jpg"}, redundantPaths(snap.Report))
}
