package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"site-janitor/core/catalog"
	"site-janitor/core/database"
	"site-janitor/core/storage/memstore"
	"site-janitor/core/walker"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2025, 1, 9, 8, 7, 6, 0, time.UTC)

func sqliteCatalog(t *testing.T) *catalog.Catalog {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	for _, stmt := range []string{
		"CREATE TABLE sites (id TEXT PRIMARY KEY, owner TEXT, title TEXT, logo TEXT, hero TEXT, gallery TEXT)",
		"CREATE TABLE profiles (id TEXT PRIMARY KEY, email TEXT, role TEXT)",
		"INSERT INTO sites VALUES ('s1', 'alice', 'Bakery, \"Best\" in town', 'alice/s1/logo.png', NULL, NULL)",
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	cat, err := catalog.New(db, catalog.Config{
		SitesTable:       "sites",
		ProfilesTable:    "profiles",
		IDColumn:         "id",
		OwnerColumn:      "owner",
		RoleColumn:       "role",
		DefaultRole:      "USER",
		ReferenceColumns: []string{"logo", "hero", "gallery"},
		BackupTables:     []string{"sites", "profiles"},
	})
	require.NoError(t, err)
	return cat
}

func newExporter(store *memstore.Store, cat Catalog, tables ...string) *Exporter {
	e := NewExporter(walker.New(store), store, cat, tables, nil, nil)
	e.now = func() time.Time { return clock }
	return e
}

func readArchive(t *testing.T, data []byte) map[string]string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(b)
	}
	return files
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 12, 31, 23, 59, 58, 0, time.FixedZone("X", -3600))
	assert.Equal(t, "site-backup-20250101-005958.zip", Filename(at))
}

func TestExportScenarioC(t *testing.T) {
	store := memstore.New("")
	store.Put("alice/s1/logo.png", []byte("PNG"), clock)
	store.Put("alice/s1/gallery/2.jpg", []byte("JPG"), clock)

	archive, err := newExporter(store, sqliteCatalog(t), "sites", "profiles").Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "site-backup-20250109-080706.zip", archive.Filename)
	assert.Equal(t, 2, archive.Objects)
	assert.Equal(t, []string{"sites", "profiles"}, archive.Tables)

	files := readArchive(t, archive.Data)
	assert.Contains(t, files, "storage/")
	assert.Contains(t, files, "database/")
	assert.Equal(t, "PNG", files["storage/alice/s1/logo.png"])
	assert.Equal(t, "JPG", files["storage/alice/s1/gallery/2.jpg"])
	assert.Equal(t, "id,email,role\n", files["database/profiles.csv"])
	assert.Equal(t,
		"id,owner,title,logo,hero,gallery\n"+
			"s1,alice,\"Bakery, \"\"Best\"\" in town\",alice/s1/logo.png,,\n",
		files["database/sites.csv"])
}

func TestExportDownloadFailureReturnsNothing(t *testing.T) {
	store := memstore.New("")
	store.Put("a.png", []byte("a"), clock)
	store.Put("b.png", []byte("b"), clock)
	store.DownloadErrors["b.png"] = errors.New("403")

	archive, err := newExporter(store, sqliteCatalog(t), "sites").Export(context.Background())
	assert.Nil(t, archive)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, "b.png", dlErr.Path)
}

func TestExportListFailure(t *testing.T) {
	store := memstore.New("")
	store.ListErrors[""] = errors.New("unavailable")

	archive, err := newExporter(store, sqliteCatalog(t), "sites").Export(context.Background())
	assert.Nil(t, archive)

	var listErr *walker.ListError
	assert.True(t, errors.As(err, &listErr))
}

// fakeCatalog serves fixed rows and columns.
type fakeCatalog struct {
	rows    map[string][]catalog.Row
	columns map[string][]string
	rowsErr error
}

func (f *fakeCatalog) Rows(ctx context.Context, table string, columns ...string) ([]catalog.Row, error) {
	return f.rows[table], f.rowsErr
}

func (f *fakeCatalog) Columns(ctx context.Context, table string) ([]string, error) {
	cols := f.columns[table]
	if len(cols) == 0 {
		return nil, catalog.ErrNoColumns
	}
	return cols, nil
}

func TestExportSchemaFailure(t *testing.T) {
	archive, err := newExporter(memstore.New(""), &fakeCatalog{}, "ghost").Export(context.Background())
	assert.Nil(t, archive)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "ghost", schemaErr.Table)
	assert.ErrorIs(t, err, catalog.ErrNoColumns)
}

func TestExportTableFetchFailure(t *testing.T) {
	cat := &fakeCatalog{rowsErr: errors.New("permission denied for table")}
	archive, err := newExporter(memstore.New(""), cat, "sites").Export(context.Background())
	assert.Nil(t, archive)
	assert.ErrorContains(t, err, "permission denied for table")
}

func TestExportKeepsEmptyFolderMarkers(t *testing.T) {
	store := memstore.New("")
	store.Put("alice/logo.png", []byte("PNG"), clock)
	store.Put("alice/empty/.emptyFolderPlaceholder", nil, clock)

	archive, err := newExporter(store, sqliteCatalog(t), "profiles").Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, archive.Objects)

	files := readArchive(t, archive.Data)
	assert.Contains(t, files, "storage/alice/empty/.emptyFolderPlaceholder")
	assert.Equal(t, "PNG", files["storage/alice/logo.png"])
}
