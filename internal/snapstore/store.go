// Package snapstore persists taxonomy snapshots as self-describing JSON files
// and keeps timestamped backups of prior snapshots.
package snapstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

// Store reads and writes snapshots under one base directory.
type Store struct {
	baseDir string
}

// New validates the base directory, creating it when missing.
func New(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes the snapshot under name. If a snapshot file already exists it
// is first renamed to a timestamped backup, so a bad scrape never destroys
// the previous snapshot.
func (s *Store) Save(name string, snap taxonomy.Snapshot) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		backup := backupName(path, time.Now().UTC())
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return "", fmt.Errorf("back up previous snapshot: %w", renameErr)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// Load reads the snapshot stored under name.
func (s *Store) Load(name string) (taxonomy.Snapshot, error) {
	path, err := s.resolve(name)
	if err != nil {
		return taxonomy.Snapshot{}, err
	}
	return LoadFile(path)
}

// LoadFile reads a snapshot from an arbitrary path, for diffing files that
// live outside the store.
func LoadFile(path string) (taxonomy.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return taxonomy.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap taxonomy.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return taxonomy.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

// ListBackups returns the backup files for name, newest first by modification
// time.
func (s *Store) ListBackups(name string) ([]string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	pattern := strings.TrimSuffix(path, filepath.Ext(path)) + ".*" + filepath.Ext(path)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	type backup struct {
		path string
		mod  time.Time
	}
	backups := make([]backup, 0, len(matches))
	for _, match := range matches {
		if match == path {
			continue
		}
		info, statErr := os.Stat(match)
		if statErr != nil {
			continue
		}
		backups = append(backups, backup{path: match, mod: info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].mod.After(backups[j].mod)
	})

	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}

// resolve joins name onto the base directory and rejects traversal outside it.
func (s *Store) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("snapshot name is required")
	}
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	full := filepath.Join(s.baseDir, name)
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(full), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot name escapes the store directory")
	}
	return full, nil
}

func backupName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	stamp := now.Format("20060102T150405")
	return strings.TrimSuffix(path, ext) + "." + stamp + ext
}
