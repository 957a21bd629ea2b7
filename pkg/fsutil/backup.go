package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupMode selects where backups go.
type BackupMode string

const (
	// BackupModeSidecar writes "<file>.gramlint.bak" next to the file.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is appended to sidecar backups.
const BackupSuffix = ".gramlint.bak"

// BackupConfig controls backups taken before fix mode rewrites a file.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig has backups off, sidecar mode when turned on.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Mode: BackupModeSidecar}
}

// BackupPath returns where the backup of path lives, or "" for BackupModeNone.
// Unknown modes behave like sidecar.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// CreateBackup copies path to its backup location unless a backup is
// already there, so repeated fix runs keep the first original. It reports
// whether a backup was written.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	dst := BackupPath(path, cfg.Mode)
	if dst == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("create backup: %w", err)
	}

	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat backup path: %w", err)
	}

	copied, err := copyAtomic(ctx, path, dst)
	if err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return copied, nil
}

// RestoreBackup copies the backup back over path. It reports false when
// there is no backup.
func RestoreBackup(ctx context.Context, path string, mode BackupMode) (bool, error) {
	src := BackupPath(path, mode)
	if src == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("restore backup: %w", err)
	}

	restored, err := copyAtomic(ctx, src, path)
	if err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}
	return restored, nil
}

// RemoveBackup deletes the backup of path. It reports false when there was
// none.
func RemoveBackup(path string, mode BackupMode) (bool, error) {
	dst := BackupPath(path, mode)
	if dst == "" {
		return false, nil
	}

	switch err := os.Remove(dst); {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("remove backup: %w", err)
	}
}

// BackupExists reports whether path has a backup.
func BackupExists(path string, mode BackupMode) bool {
	dst := BackupPath(path, mode)
	if dst == "" {
		return false
	}
	_, err := os.Stat(dst)
	return err == nil
}

// copyAtomic copies src to dst keeping src's mode. A missing src is not an
// error; it reports false.
func copyAtomic(ctx context.Context, src, dst string) (bool, error) {
	stat, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return false, err
	}
	if err := WriteAtomic(ctx, dst, content, stat.Mode()); err != nil {
		return false, err
	}
	return true, nil
}
