package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec and folds stderr into the error.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
		}
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return nil
}

type BackupService struct {
	Dir           string
	DatabaseURL   string
	PGDump        string
	PSQL          string
	RetentionDays int
	Runner        Runner
	Now           func() time.Time
}

func NewBackupService(dir, databaseURL, pgDump, psql string, retentionDays int) *BackupService {
	if pgDump == "" {
		pgDump = "pg_dump"
	}
	if psql == "" {
		psql = "psql"
	}
	return &BackupService{
		Dir:           dir,
		DatabaseURL:   databaseURL,
		PGDump:        pgDump,
		PSQL:          psql,
		RetentionDays: retentionDays,
		Runner:        ExecRunner{},
		Now:           time.Now,
	}
}

// Create dumps the database to backup-<timestamp>.sql.
func (s *BackupService) Create(ctx context.Context) (*ArchiveFile, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	name := "backup-" + s.Now().Format("20060102-150405") + ".sql"
	path := filepath.Join(s.Dir, name)

	start := time.Now()
	err := s.Runner.Run(ctx, s.PGDump,
		"--dbname", s.DatabaseURL,
		"--no-owner",
		"--no-privileges",
		"--file", path,
	)
	if err != nil {
		os.Remove(path)
		log.Printf("[BACKUP] create failed: %v", err)
		return nil, fmt.Errorf("backup: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	log.Printf("[BACKUP] created %s (%d bytes) in %v", name, info.Size(), time.Since(start))
	return &ArchiveFile{Name: name, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

// List returns backups, newest first.
func (s *BackupService) List() ([]ArchiveFile, error) {
	return listArchives(s.Dir, "backup-", ".sql")
}

// Path resolves a backup name, rejecting path separators and unknown files.
func (s *BackupService) Path(name string) (string, error) {
	return archivePath(s.Dir, name, "backup-", ".sql", ErrBackupNotFound)
}

// Restore replays a backup into the configured database, stopping at the first error.
func (s *BackupService) Restore(ctx context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	log.Printf("[BACKUP] restoring %s", name)
	err = s.Runner.Run(ctx, s.PSQL,
		"--dbname", s.DatabaseURL,
		"-v", "ON_ERROR_STOP=1",
		"--file", path,
	)
	if err != nil {
		log.Printf("[BACKUP] restore of %s failed: %v", name, err)
		return fmt.Errorf("restore: %w", err)
	}
	log.Printf("[BACKUP] restored %s", name)
	return nil
}

func (s *BackupService) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Cleanup removes backups older than the retention window and returns their names.
func (s *BackupService) Cleanup() ([]string, error) {
	removed := []string{}
	if s.RetentionDays <= 0 {
		return removed, nil
	}
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	cutoff := s.Now().AddDate(0, 0, -s.RetentionDays)
	for _, f := range files {
		if !f.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, f.Name)); err != nil {
			log.Printf("[BACKUP] remove %s: %v", f.Name, err)
			continue
		}
		removed = append(removed, f.Name)
	}
	if len(removed) > 0 {
		log.Printf("[BACKUP] cleanup removed %d backups older than %d days", len(removed), s.RetentionDays)
	}
	return removed, nil
}
