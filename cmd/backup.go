package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"site-janitor/core/backup"
	"site-janitor/feature/maintenance"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupOut string

// backupCmd exports the bucket and catalog tables to a zip on disk.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the asset bucket and catalog tables into a zip archive",
	Long: `Downloads every stored object and dumps every configured catalog table as CSV
into site-backup-<timestamp>.zip. The file only appears once the export is complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		l := env.logger
		defer l.Sync()

		ctx := cmd.Context()
		if minutes := env.cfg.Backup.TimeoutMinutes; minutes > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(minutes)*time.Minute)
			defer cancel()
		}

		dir := backupOut
		if dir == "" {
			dir = env.cfg.Backup.OutputDir
		}

		svc := maintenance.NewService(env.store, env.catalog, env.cfg.Storage, env.cfg.Scan, l, nil)
		archive, err := svc.Backup(ctx)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		path, err := writeArchive(afero.NewOsFs(), dir, archive)
		if err != nil {
			return err
		}
		l.Info("Backup written", zap.String("path", path), zap.Int("bytes", len(archive.Data)))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupOut, "out", "", "Output directory (defaults to backup.output_dir)")
	RootCmd.AddCommand(backupCmd)
}

// writeArchive stores archive under dir through a temporary file that is
// renamed into place once fully written.
func writeArchive(fs afero.Fs, dir string, archive *backup.Archive) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+archive.Filename+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(archive.Data); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	final := filepath.Join(dir, archive.Filename)
	if err := fs.Rename(tmpName, final); err != nil {
		_ = fs.Remove(tmpName)
		return "", fmt.Errorf("failed to move archive into place: %w", err)
	}
	return final, nil
}
