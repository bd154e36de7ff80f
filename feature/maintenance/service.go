package maintenance

import (
	"context"
	"errors"
	"fmt"

	"site-janitor/core/backup"
	"site-janitor/core/catalog"
	"site-janitor/core/deleter"
	"site-janitor/core/metrics"
	"site-janitor/core/paths"
	"site-janitor/core/reconcile"
	"site-janitor/core/reference"
	"site-janitor/core/storage"
	"site-janitor/core/walker"

	"go.uber.org/zap"
)

// ErrNotReady is returned when a deletion is requested before the policy has
// a completed scan.
var ErrNotReady = errors.New("no completed scan for this policy, run a scan first")

// DeleteResult describes an executed or simulated deletion.
type DeleteResult struct {
	Policy  reconcile.Policy  `json:"policy"`
	Paths   []string          `json:"paths"`
	Deleted int               `json:"deleted"`
	DryRun  bool              `json:"dry_run"`
	Report  *reconcile.Report `json:"report,omitempty"`
}

// Service coordinates scans, deletions and backups over one bucket and one
// catalog.
type Service struct {
	catalog  *catalog.Catalog
	walker   *walker.Walker
	deleter  *deleter.Deleter
	exporter *backup.Exporter
	scanners map[reconcile.Policy]*reconcile.Scanner
	logger   *zap.Logger
}

// NewService wires the scan engine, deleter and exporter over store and cat.
func NewService(store storage.Store, cat *catalog.Catalog, storageCfg storage.Config, scanCfg reconcile.Config, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	catCfg := cat.Config()

	w := walker.New(store, walker.WithPageSize(storageCfg.PageSize), walker.WithPlaceholder(storageCfg.Placeholder))
	normalizer := paths.NewNormalizer(storageCfg.Bucket, storageCfg.PublicPath, storageCfg.ReferenceBases()...)
	builder := reference.NewBuilder(normalizer, catCfg.ReferenceColumns, catCfg.IDColumn, logger)
	engine := reconcile.NewEngine(w, store, cat, builder, normalizer, scanCfg, logger)

	return &Service{
		catalog: cat,
		walker:  w,
		deleter: deleter.New(store,
			deleter.WithChunkSize(storageCfg.DeleteChunkSize),
			deleter.WithLogger(logger),
			deleter.WithMetrics(m)),
		exporter: backup.NewExporter(w, store, cat, catCfg.BackupTables, logger, m),
		scanners: map[reconcile.Policy]*reconcile.Scanner{
			reconcile.PolicyFolders: reconcile.NewScanner(reconcile.PolicyFolders, engine.ScanFolders, logger, m),
			reconcile.PolicyObjects: reconcile.NewScanner(reconcile.PolicyObjects, func(ctx context.Context) (*reconcile.Report, error) {
				return engine.ScanObjects(ctx, reconcile.ViewPath)
			}, logger, m),
		},
		logger: logger,
	}
}

func (s *Service) scanner(policy reconcile.Policy) (*reconcile.Scanner, error) {
	sc, ok := s.scanners[policy]
	if !ok {
		_, err := reconcile.ParsePolicy(string(policy))
		return nil, err
	}
	return sc, nil
}

// Scan runs a fresh scan of policy.
func (s *Service) Scan(ctx context.Context, policy reconcile.Policy) (*reconcile.Report, error) {
	sc, err := s.scanner(policy)
	if err != nil {
		return nil, err
	}
	return sc.Refresh(ctx)
}

// Snapshot returns the current state of policy without scanning.
func (s *Service) Snapshot(policy reconcile.Policy) (reconcile.Snapshot, error) {
	sc, err := s.scanner(policy)
	if err != nil {
		return reconcile.Snapshot{}, err
	}
	return sc.Snapshot(), nil
}

// Delete removes the selected candidates of policy.
//
// The policy must already be Ready. The selection is validated against a
// fresh scan rather than the stored one, so paths that became referenced in
// the meantime are refused. After a deletion every other policy is reset and
// this policy is scanned again.
func (s *Service) Delete(ctx context.Context, policy reconcile.Policy, selection []string, dryRun bool) (*DeleteResult, error) {
	sc, err := s.scanner(policy)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Ready(); !ok {
		return nil, ErrNotReady
	}

	report, err := sc.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s scan: %w", policy, err)
	}

	plan, err := reconcile.PlanDeletion(report, selection)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{Policy: policy, Paths: plan.Paths, DryRun: dryRun}
	if dryRun {
		result.Report = report
		return result, nil
	}

	deleted, applyErr := reconcile.ApplyPlan(ctx, plan, s.deleter, s.walker, reconcile.DeleteOptions{Confirmed: true})
	result.Deleted = deleted

	for p, other := range s.scanners {
		if p != policy {
			other.Reset()
		}
	}

	// Start a new run instead of joining one that began before the deletion.
	sc.Reset()
	after, err := sc.Refresh(ctx)
	if err != nil {
		s.logger.Warn("Rescan after deletion failed", zap.String("policy", string(policy)), zap.Error(err))
	} else {
		result.Report = after
	}

	if applyErr != nil {
		return nil, applyErr
	}

	s.logger.Info("Deleted candidates",
		zap.String("policy", string(policy)),
		zap.Int("selected", len(plan.Paths)),
		zap.Int("objects", deleted))
	return result, nil
}

// Backup exports the bucket and the backup tables.
func (s *Service) Backup(ctx context.Context) (*backup.Archive, error) {
	return s.exporter.Export(ctx)
}

// Sites lists every site id with its owner.
func (s *Service) Sites(ctx context.Context) ([]catalog.Site, error) {
	sites, err := s.catalog.SiteList(ctx)
	if err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []catalog.Site{}
	}
	return sites, nil
}
