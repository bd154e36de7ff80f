package reconcile

import (
	"context"
	"errors"
	"testing"

	"site-janitor/core/deleter"
	"site-janitor/core/storage/memstore"
	"site-janitor/core/walker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectReport(paths ...string) *Report {
	r := &Report{Policy: PolicyObjects}
	for _, p := range paths {
		r.Redundant = append(r.Redundant, ObjectEntry{Path: p})
	}
	return r
}

func TestPlanDeletion(t *testing.T) {
	report := objectReport("a.png", "b.png", "c.png")

	plan, err := PlanDeletion(report, []string{"b.png", " a.png ", "b.png", ""})
	require.NoError(t, err)
	assert.Equal(t, PolicyObjects, plan.Policy)
	assert.Equal(t, []string{"b.png", "a.png"}, plan.Paths)

	_, err = PlanDeletion(report, []string{"a.png", "referenced.png"})
	var unknown *UnknownPathsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"referenced.png"}, unknown.Paths)

	_, err = PlanDeletion(report, nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = PlanDeletion(nil, []string{"a.png"})
	assert.ErrorIs(t, err, ErrNoReport)

	_, err = PlanAll(nil)
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestPlanDeletionFoldersOnlyOffersMissing(t *testing.T) {
	report := &Report{
		Policy:  PolicyFolders,
		Matched: []FolderEntry{{Path: "site1", SiteID: "site1"}},
		Missing: []FolderEntry{{Path: "orphan"}},
	}

	_, err := PlanDeletion(report, []string{"site1"})
	var unknown *UnknownPathsError
	assert.True(t, errors.As(err, &unknown))

	plan, err := PlanAll(report)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, plan.Paths)
}

func TestApplyPlanGates(t *testing.T) {
	store := memstore.New("")
	store.Put("a.png", nil, t0)
	plan := &Plan{Policy: PolicyObjects, Paths: []string{"a.png"}}
	d := deleter.New(store)
	w := walker.New(store)

	tests := []struct {
		name string
		opts DeleteOptions
	}{
		{"NotConfirmed", DeleteOptions{}},
		{"DryRun", DeleteOptions{Confirmed: true, DryRun: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ApplyPlan(context.Background(), plan, d, w, tt.opts)
			assert.NoError(t, err)
			assert.Zero(t, n)
			assert.Empty(t, store.RemoveCalls)
			assert.True(t, store.Has("a.png"))
		})
	}

	n, err := ApplyPlan(context.Background(), plan, d, w, DeleteOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, store.Has("a.png"))
}

func TestApplyPlanExpandsFolders(t *testing.T) {
	store := memstore.New("")
	store.Put("orphan/a.png", nil, t0)
	store.Put("orphan/x/b.png", nil, t0)
	store.Put("empty/.emptyFolderPlaceholder", nil, t0)
	store.Put("keep/c.png", nil, t0)

	plan := &Plan{Policy: PolicyFolders, Paths: []string{"orphan", "empty"}}
	n, err := ApplyPlan(context.Background(), plan, deleter.New(store, deleter.WithChunkSize(1)), walker.New(store), DeleteOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.RemoveCalls, 3)
	assert.True(t, store.Has("keep/c.png"))
	assert.False(t, store.Has("orphan/x/b.png"))
	assert.False(t, store.Has("empty/.emptyFolderPlaceholder"))
}

func TestApplyPlanRemovesMarkerOnlyFolder(t *testing.T) {
	store := memstore.New("")
	store.Put("orphan123/.emptyFolderPlaceholder", nil, t0)
	engine := newTestEngine(store, &fakeSource{sites: map[string]string{"site-1": "alice"}})

	report, err := engine.ScanFolders(context.Background())
	require.NoError(t, err)
	plan, err := PlanAll(report)
	require.NoError(t, err)

	n, err := ApplyPlan(context.Background(), plan, deleter.New(store), walker.New(store), DeleteOptions{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := engine.ScanFolders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, after.Missing)
}

func TestApplyPlanChunkFailure(t *testing.T) {
	store := memstore.New("")
	store.Put("a.png", nil, t0)
	store.Put("b.png", nil, t0)
	store.RemoveErrors[1] = errors.New("quota")

	plan := &Plan{Policy: PolicyObjects, Paths: []string{"a.png", "b.png"}}
	n, err := ApplyPlan(context.Background(), plan, deleter.New(store, deleter.WithChunkSize(1)), walker.New(store), DeleteOptions{Confirmed: true})
	assert.Zero(t, n)

	var chunkErr *deleter.ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 1, chunkErr.Index)
	assert.Len(t, store.RemoveCalls, 1)
}

func TestSortObjectsAndFolders(t *testing.T) {
	objs := []ObjectEntry{
		{Path: "b", UpdatedAt: &t0},
		{Path: "a", UpdatedAt: &t0},
		{Path: "c", UpdatedAt: &t1},
		{Path: "d"},
	}
	SortObjects(objs, ViewRecent)
	var got []string
	for _, o := range objs {
		got = append(got, o.Path)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, got)

	SortObjects(objs, ViewPath)
	got = got[:0]
	for _, o := range objs {
		got = append(got, o.Path)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)

	folders := []FolderEntry{
		{Path: "x/2", FolderName: "Beta", Status: StatusMissing},
		{Path: "x/1", FolderName: "alpha", Status: StatusMissing},
		{Path: "x/3", FolderName: "beta", Status: StatusMissing},
	}
	SortFolders(folders, FolderSortName, true)
	assert.Equal(t, "x/2", folders[0].Path)
	assert.Equal(t, "x/3", folders[1].Path)
	assert.Equal(t, "x/1", folders[2].Path)

	_, err := ParseObjectView("oldest")
	assert.Error(t, err)
	v, err := ParseObjectView("")
	require.NoError(t, err)
	assert.Equal(t, ViewPath, v)

	_, err = ParseFolderSortField("bogus")
	assert.Error(t, err)
}
