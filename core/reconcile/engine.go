package reconcile

import (
	"context"
	"strings"
	"time"

	"site-janitor/core/paths"
	"site-janitor/core/reference"
	"site-janitor/core/storage"
	"site-janitor/core/walker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine classifies storage contents against the catalog.
type Engine struct {
	walker     *walker.Walker
	store      storage.Store
	source     Source
	builder    *reference.Builder
	normalizer *paths.Normalizer
	reserved   map[string]struct{}
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(w *walker.Walker, store storage.Store, source Source, builder *reference.Builder, normalizer *paths.Normalizer, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	reserved := make(map[string]struct{}, len(cfg.ReservedFolders))
	for _, name := range cfg.ReservedFolders {
		if name = strings.TrimSpace(name); name != "" {
			reserved[strings.ToLower(name)] = struct{}{}
		}
	}
	return &Engine{
		walker:     w,
		store:      store,
		source:     source,
		builder:    builder,
		normalizer: normalizer,
		reserved:   reserved,
		logger:     logger,
		now:        time.Now,
	}
}

// Scan runs the given policy. view only applies to the object policy.
func (e *Engine) Scan(ctx context.Context, policy Policy, view ObjectView) (*Report, error) {
	switch policy {
	case PolicyFolders:
		return e.ScanFolders(ctx)
	case PolicyObjects:
		return e.ScanObjects(ctx, view)
	default:
		_, err := ParsePolicy(string(policy))
		return nil, err
	}
}

func (e *Engine) isReserved(name string) bool {
	_, ok := e.reserved[strings.ToLower(name)]
	return ok
}

// ScanFolders lists the root of the bucket and matches folder names against
// site ids. A root folder that matches is recorded once. Otherwise each of its
// child folders is recorded as owner/site, and the root itself is recorded
// when it has no child folders. Reserved names are skipped at both levels.
func (e *Engine) ScanFolders(ctx context.Context) (*Report, error) {
	sites, err := e.source.Sites(ctx)
	if err != nil {
		return nil, err
	}

	roots, err := e.walker.Children(ctx, "")
	if err != nil {
		return nil, err
	}

	var collected []FolderEntry
	seen := make(map[string]struct{})
	register := func(owner, name, path string, updatedAt *time.Time) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		path = e.normalizer.Normalize(path)
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}

		entry := FolderEntry{
			Path:         path,
			FolderName:   name,
			StorageOwner: owner,
			Status:       StatusMissing,
			UpdatedAt:    updatedAt,
		}
		if siteOwner, ok := sites[name]; ok {
			entry.SiteID = name
			entry.SiteOwner = siteOwner
			entry.Status = StatusInDatabase
		}
		collected = append(collected, entry)
	}

	for _, root := range roots {
		if root.IsLeaf {
			continue
		}
		rootName := strings.TrimSpace(paths.Base(root.Path))
		if rootName == "" || e.isReserved(rootName) {
			continue
		}

		if owner, ok := sites[rootName]; ok {
			if owner == "" {
				owner = rootName
			}
			register(owner, rootName, rootName, root.UpdatedAt)
			continue
		}

		children, err := e.walker.Children(ctx, root.Path)
		if err != nil {
			return nil, err
		}

		added := false
		for _, child := range children {
			if child.IsLeaf {
				continue
			}
			childName := strings.TrimSpace(paths.Base(child.Path))
			if childName == "" || e.isReserved(childName) {
				continue
			}
			updated := child.UpdatedAt
			if updated == nil {
				updated = root.UpdatedAt
			}
			register(rootName, childName, paths.Join(rootName, childName), updated)
			added = true
		}
		if !added {
			register(rootName, rootName, rootName, root.UpdatedAt)
		}
	}

	SortFolders(collected, FolderSortDefault, false)

	report := &Report{
		Policy:      PolicyFolders,
		GeneratedAt: e.now(),
	}
	for _, entry := range collected {
		if entry.Matched() {
			report.Matched = append(report.Matched, entry)
		} else {
			report.Missing = append(report.Missing, entry)
		}
	}
	report.Stats = Stats{
		Scanned:       len(collected),
		Matched:       len(report.Matched),
		Missing:       len(report.Missing),
		TotalEntities: len(sites),
	}

	e.logger.Info("Folder scan complete",
		zap.Int("folders", report.Stats.Scanned),
		zap.Int("matched", report.Stats.Matched),
		zap.Int("missing", report.Stats.Missing),
		zap.Int("sites", report.Stats.TotalEntities))

	return report, nil
}

// ScanObjects walks the whole bucket and reports every leaf whose path is not
// in the catalog's reference set. The reference set and the walk are loaded
// concurrently; neither depends on the other.
func (e *Engine) ScanObjects(ctx context.Context, view ObjectView) (*Report, error) {
	var (
		refs   *reference.Set
		leaves []storage.Object
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.source.ReferenceRows(gctx)
		if err != nil {
			return err
		}
		refs = e.builder.Build(rows)
		return nil
	})
	g.Go(func() error {
		var err error
		leaves, err = e.walker.Leaves(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Policy:      PolicyObjects,
		GeneratedAt: e.now(),
	}
	matched := 0
	for _, leaf := range leaves {
		p := e.normalizer.Normalize(leaf.Path)
		if refs.Has(p) {
			matched++
			continue
		}
		var size int64
		if leaf.Size != nil {
			size = *leaf.Size
		}
		report.Redundant = append(report.Redundant, ObjectEntry{
			Path:        p,
			Size:        size,
			UpdatedAt:   leaf.UpdatedAt,
			PublicURL:   e.store.PublicURL(p),
			Description: paths.Describe(p),
		})
	}

	SortObjects(report.Redundant, view)

	report.Stats = Stats{
		Scanned:         len(leaves),
		Matched:         matched,
		Redundant:       len(report.Redundant),
		TotalEntities:   refs.Entities,
		ReferencedPaths: refs.Len(),
		Skipped:         refs.Skipped,
	}

	e.logger.Info("Object scan complete",
		zap.Int("objects", report.Stats.Scanned),
		zap.Int("matched", report.Stats.Matched),
		zap.Int("redundant", report.Stats.Redundant),
		zap.Int("referenced", report.Stats.ReferencedPaths),
		zap.Int("skipped", report.Stats.Skipped))

	return report, nil
}
