package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Manager handles backup directory operations for containers that are
// about to be rewritten in place.
type Manager struct {
	dir string
}

// NewManager creates a backup manager. An empty dir selects the default
// location under the user's home directory.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// GetBackupDir returns the directory backups are written to
func (m *Manager) GetBackupDir() string {
	if m.dir != "" {
		return m.dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".uasset", "backups")
	}
	return filepath.Join(homeDir, ".uasset", "backups")
}

// EnsureDir creates the backup directory and all parent directories
func (m *Manager) EnsureDir() error {
	return os.MkdirAll(m.GetBackupDir(), 0755)
}

// FileExists checks if a file exists
func (m *Manager) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// GetFileSize returns the size of a file, or 0 if it doesn't exist
func (m *Manager) GetFileSize(filename string) int64 {
	info, err := os.Stat(filename)
	if err != nil {
		return 0
	}
	return info.Size()
}

// BackupPath returns the timestamped destination path for a container
func (m *Manager) BackupPath(containerPath string, now time.Time) string {
	base := filepath.Base(containerPath)
	safeName := strings.ReplaceAll(base, " ", "_")
	stamp := now.UTC().Format("20060102T150405Z")
	return filepath.Join(m.GetBackupDir(), fmt.Sprintf("%s.%s.bak", safeName, stamp))
}

// Backup copies a container into the backup directory and returns the
// backup's path.
func (m *Manager) Backup(containerPath string) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	src, err := os.Open(containerPath)
	if err != nil {
		return "", fmt.Errorf("opening container for backup: %w", err)
	}
	defer src.Close()

	dest := m.BackupPath(containerPath, time.Now())
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return "", fmt.Errorf("copying container to backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("closing backup file: %w", err)
	}

	return dest, nil
}
