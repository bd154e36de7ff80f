package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"site-janitor/core/backup"
	"site-janitor/core/reconcile"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfirmDestructiveAction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		auto  bool
		want  bool
	}{
		{"Yes", "yes\n", false, true},
		{"YesWithoutNewline", "yes", false, true},
		{"Padded", "  yes \n", false, true},
		{"No", "no\n", false, false},
		{"Empty", "", false, false},
		{"Uppercase", "YES\n", false, false},
		{"Auto", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := confirmDestructiveAction(strings.NewReader(tt.input), &out, tt.auto)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, out.String())
		})
	}
}

func TestWriteArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := &backup.Archive{
		Filename: backup.Filename(time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)),
		Data:     []byte("PK"),
	}

	path, err := writeArchive(fs, "out/backups", archive)
	require.NoError(t, err)
	assert.Equal(t, "out/backups/site-backup-20250203-040506.zip", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data)

	entries, err := afero.ReadDir(fs, "out/backups")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteArchiveReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := writeArchive(fs, "out", &backup.Archive{Filename: "a.zip"})
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	report := &reconcile.Report{
		Policy: reconcile.PolicyObjects,
		Redundant: []reconcile.ObjectEntry{
			{Path: "a/b/c.png", Size: 3},
		},
		Stats: reconcile.Stats{Scanned: 4, Matched: 3, Redundant: 1},
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, zap.NewNop(), report, true))
	assert.Contains(t, out.String(), `"path": "a/b/c.png"`)
	assert.Contains(t, out.String(), `"redundant": 1`)

	core, logs := observer.New(zapcore.InfoLevel)
	out.Reset()
	require.NoError(t, printReport(&out, zap.New(core), report, false))
	assert.Empty(t, out.String())
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "a/b/c.png", logs.All()[1].ContextMap()["path"])
}
