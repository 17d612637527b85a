// Package filesystem reads documents from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource = (*Source)(nil)
	_ driven.Watcher        = (*Source)(nil)
)

// Source lists and reads documents under a root path.
// The root may be a directory, scanned recursively, or a single file.
type Source struct {
	rootPath string
}

// New creates a filesystem source.
func New(rootPath string) *Source {
	return &Source{rootPath: rootPath}
}

// RootPath returns the configured root.
func (s *Source) RootPath() string {
	return s.rootPath
}

// Scan walks the root and returns every supported file. Hidden files and
// directories are skipped; files with unknown extensions become warnings.
func (s *Source) Scan(ctx context.Context) ([]domain.SourceEntry, []domain.Warning, error) {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", s.rootPath, err)
	}

	if !info.IsDir() {
		entry, warning, ok := s.entry(filepath.Base(s.rootPath), s.rootPath, info)
		if !ok {
			return nil, []domain.Warning{warning}, nil
		}
		return []domain.SourceEntry{entry}, nil, nil
	}

	var entries []domain.SourceEntry
	var warnings []domain.Warning

	err = filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.rootPath, path)
		if err != nil {
			return err
		}
		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		entry, warning, ok := s.entry(filepath.ToSlash(rel), path, info)
		if !ok {
			warnings = append(warnings, warning)
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", s.rootPath, err)
	}
	return entries, warnings, nil
}

func (s *Source) entry(id, path string, info fs.FileInfo) (domain.SourceEntry, domain.Warning, bool) {
	format, ok := domain.FormatFromPath(path)
	if !ok {
		return domain.SourceEntry{}, domain.Warning{
			DocumentID: id,
			Code:       domain.WarningUnsupported,
			Message:    fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)),
		}, false
	}
	return domain.SourceEntry{
		ID:         id,
		URI:        absPath(path),
		Format:     format,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, domain.Warning{}, true
}

// Load reads a scanned file. Files above maxBytes are rejected before reading;
// a maxBytes of zero disables the check.
func (s *Source) Load(ctx context.Context, entry domain.SourceEntry, maxBytes int64) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(entry.URI)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, entry.ID)
		}
		return nil, fmt.Errorf("stat %s: %w", entry.ID, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, &domain.TooLargeError{DocumentID: entry.ID, Size: info.Size(), Limit: maxBytes}
	}

	content, err := os.ReadFile(entry.URI)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.ID, err)
	}

	return &domain.RawDocument{
		ID:         entry.ID,
		URI:        entry.URI,
		Format:     entry.Format,
		Content:    content,
		Size:       int64(len(content)),
		ModifiedAt: info.ModTime(),
		Metadata: map[string]any{
			"path": entry.ID,
		},
	}, nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
