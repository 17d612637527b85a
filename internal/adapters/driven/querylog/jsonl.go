// Package querylog records executed queries as JSON lines in a file.
package querylog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/logger"
)

// Ensure File implements the interface.
var _ driven.QueryLog = (*File)(nil)

// File appends one JSON object per query to a file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a query log at path, creating parent directories.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating query log directory: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the log file path.
func (f *File) Path() string {
	return f.path
}

// Record appends an entry. Failures are logged, never returned.
func (f *File) Record(entry domain.QueryLogEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("Failed to encode query log entry: %v", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		logger.Warn("Failed to open query log: %v", err)
		return
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		logger.Warn("Failed to write query log: %v", err)
	}
}

// Recent returns up to n of the latest entries, oldest first.
// Lines that cannot be decoded are skipped.
func (f *File) Recent(ctx context.Context, n int) ([]domain.QueryLogEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open query log: %w", err)
	}
	defer file.Close()

	var entries []domain.QueryLogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e domain.QueryLogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
		if len(entries) > n {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read query log: %w", err)
	}
	return entries, nil
}
