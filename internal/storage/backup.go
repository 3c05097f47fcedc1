package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupExt          = ".db"
	encryptedBackupExt = ".db.enc"
	backupTimeFormat   = "20060102_150405.000"
)

// requiredTables must exist in a usable backup.
var requiredTables = []string{"cards", "users", "decks", "deck_items", "votes", "game_sessions"}

// BackupManager creates, verifies and restores snapshots of the record store.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a backup manager for the database file at dbPath.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupOptions controls a single backup.
type BackupOptions struct {
	// Dir defaults to a "backups" directory next to the database.
	Dir string

	// Name is the file name without extension. Empty generates a timestamped name.
	Name string

	// Password encrypts the snapshot when set.
	Password string
}

// BackupInfo describes a backup file on disk.
type BackupInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
	Encrypted bool      `json:"encrypted"`
	Checksum  string    `json:"checksum"` // SHA-256, hex
}

// Dir returns the backup directory for dir, defaulting next to the database.
func (bm *BackupManager) Dir(dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

// Backup writes a consistent snapshot of the database with VACUUM INTO, which
// does not block writers. The snapshot is verified before its path is returned.
func (bm *BackupManager) Backup(ctx context.Context, opts BackupOptions) (string, error) {
	dir := bm.Dir(opts.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "riftbound_" + time.Now().UTC().Format(backupTimeFormat)
	}
	plainPath := filepath.Join(dir, name+backupExt)
	if _, err := os.Stat(plainPath); err == nil {
		return "", fmt.Errorf("backup %s: %w", plainPath, ErrConflict)
	}

	src, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.ExecContext(ctx, "VACUUM INTO "+quoteLiteral(plainPath)); err != nil {
		_ = os.Remove(plainPath)
		return "", fmt.Errorf("failed to snapshot database: %w", Classify(err))
	}

	if err := bm.Verify(ctx, plainPath); err != nil {
		_ = os.Remove(plainPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	if opts.Password == "" {
		return plainPath, nil
	}

	encPath := filepath.Join(dir, name+encryptedBackupExt)
	err = encryptFile(plainPath, encPath, opts.Password)
	_ = os.Remove(plainPath)
	if err != nil {
		_ = os.Remove(encPath)
		return "", fmt.Errorf("failed to encrypt backup: %w", err)
	}
	return encPath, nil
}

// Verify checks that path is an intact database carrying the record store schema.
func (bm *BackupManager) Verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup %s: %w", path, ErrNotFound)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check: %s", result)
	}

	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(requiredTables)), ",") + `)`
	args := make([]interface{}, len(requiredTables))
	for i, t := range requiredTables {
		args[i] = t
	}
	var found int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return fmt.Errorf("failed to inspect backup schema: %w", err)
	}
	if found != len(requiredTables) {
		return fmt.Errorf("backup is missing %d of %d tables", len(requiredTables)-found, len(requiredTables))
	}
	return nil
}

// Restore replaces the database with the backup at path. The current file is
// kept alongside as "<db>.old.<timestamp>". Callers must close open pools first.
func (bm *BackupManager) Restore(ctx context.Context, path, password string) error {
	encrypted, err := IsEncrypted(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	defer func() { _ = os.Remove(tempPath) }()

	if encrypted {
		err = decryptFile(path, tempPath, password)
	} else {
		err = copyFile(path, tempPath)
	}
	if err != nil {
		return err
	}

	if err := bm.Verify(ctx, tempPath); err != nil {
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		old := bm.dbPath + ".old." + time.Now().UTC().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, old); err != nil {
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
		// Stale WAL files belong to the old database.
		for _, suffix := range []string{"-wal", "-shm"} {
			_ = os.Remove(bm.dbPath + suffix)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// List returns the backups in dir, newest first.
func (bm *BackupManager) List(dir string) ([]BackupInfo, error) {
	dir = bm.Dir(dir)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, backupExt) || strings.HasSuffix(name, encryptedBackupExt)) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, name)
		checksum, err := checksumFile(path)
		if err != nil {
			checksum = "unknown"
		}
		backups = append(backups, BackupInfo{
			Path:      path,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Encrypted: strings.HasSuffix(name, encryptedBackupExt),
			Checksum:  checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Prune deletes all but the newest keep backups in dir and returns how many
// were removed. keep <= 0 keeps everything.
func (bm *BackupManager) Prune(dir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	backups, err := bm.List(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", backups[i].Name, err)
		}
		removed++
	}
	return removed, nil
}

// quoteLiteral renders s as an SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
