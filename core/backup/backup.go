package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"site-janitor/core/catalog"
	"site-janitor/core/metrics"
	"site-janitor/core/storage"
	"site-janitor/core/walker"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

const (
	// StoragePartition is the archive folder holding stored objects.
	StoragePartition = "storage/"
	// DatabasePartition is the archive folder holding table dumps.
	DatabasePartition = "database/"
)

// DownloadError reports an object that could not be downloaded.
type DownloadError struct {
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %q: %v", e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// SchemaError reports a table with no rows and no introspectable columns.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unable to determine columns for the %q table: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Catalog is the table access the exporter needs.
type Catalog interface {
	Rows(ctx context.Context, table string, columns ...string) ([]catalog.Row, error)
	Columns(ctx context.Context, table string) ([]string, error)
}

// Archive is a finished export.
type Archive struct {
	Filename string
	Data     []byte
	Objects  int
	Tables   []string
}

// Filename returns the suggested archive name for an export taken at t.
func Filename(t time.Time) string {
	return "site-backup-" + t.UTC().Format("20060102-150405") + ".zip"
}

// Exporter builds backup archives.
type Exporter struct {
	walker  *walker.Walker
	store   storage.Store
	catalog Catalog
	tables  []string
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExporter creates an Exporter dumping the given tables in order.
func NewExporter(w *walker.Walker, store storage.Store, cat Catalog, tables []string, logger *zap.Logger, m *metrics.Metrics) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		walker:  w,
		store:   store,
		catalog: cat,
		tables:  tables,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Export walks the bucket and dumps every table. Objects are downloaded one
// at a time; empty-directory markers are archived too so empty folders
// survive a restore.
func (e *Exporter) Export(ctx context.Context) (archive *Archive, err error) {
	start := e.now()
	defer func() {
		size := 0
		if archive != nil {
			size = len(archive.Data)
		}
		e.metrics.ObserveBackup(size, err)
	}()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Releases the writer on early returns; the success path closes it explicitly.
	defer zw.Close()

	for _, dir := range []string{StoragePartition, DatabasePartition} {
		if _, err := zw.Create(dir); err != nil {
			return nil, fmt.Errorf("unable to initialize backup archive: %w", err)
		}
	}

	objects := 0
	for obj, err := range e.walker.IncludingPlaceholders().Walk(ctx, "") {
		if err != nil {
			e.logger.Error("Backup listing failed", zap.Error(err))
			return nil, err
		}
		if !obj.IsLeaf {
			continue
		}

		data, err := e.store.Download(ctx, obj.Path)
		if err != nil {
			e.logger.Error("Backup download failed", zap.String("path", obj.Path), zap.Error(err))
			return nil, &DownloadError{Path: obj.Path, Err: err}
		}
		if err := writeEntry(zw, StoragePartition+obj.Path, data); err != nil {
			return nil, err
		}
		objects++
	}

	for _, table := range e.tables {
		dump, err := e.dumpTable(ctx, table)
		if err != nil {
			e.logger.Error("Backup table dump failed", zap.String("table", table), zap.Error(err))
			return nil, err
		}
		if err := writeEntry(zw, DatabasePartition+table+".csv", dump); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize backup archive: %w", err)
	}

	archive = &Archive{
		Filename: Filename(start),
		Data:     buf.Bytes(),
		Objects:  objects,
		Tables:   append([]string(nil), e.tables...),
	}
	e.logger.Info("Backup complete",
		zap.String("filename", archive.Filename),
		zap.Int("objects", objects),
		zap.Int("tables", len(e.tables)),
		zap.Int("bytes", len(archive.Data)))
	return archive, nil
}

func (e *Exporter) dumpTable(ctx context.Context, table string) ([]byte, error) {
	rows, err := e.catalog.Rows(ctx, table)
	if err != nil {
		return nil, err
	}

	headers := GatherHeaders(rows)
	if len(headers) == 0 {
		headers, err = e.catalog.Columns(ctx, table)
		if errors.Is(err, catalog.ErrNoColumns) || (err == nil && len(headers) == 0) {
			if err == nil {
				err = catalog.ErrNoColumns
			}
			return nil, &SchemaError{Table: table, Err: err}
		}
		if err != nil {
			return nil, err
		}
	}

	return BuildCSV(rows, headers)
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %q to archive: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %q to archive: %w", name, err)
	}
	return nil
}
