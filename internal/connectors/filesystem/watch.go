package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/logger"
)

// Watch streams changes to supported files under the root until ctx is cancelled.
// New directories are added to the watch as they appear.
func (s *Source) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	root := s.rootPath
	info, err := os.Stat(root)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	dirs := newTree(watcher)
	if info.IsDir() {
		if err := dirs.add(root); err != nil {
			watcher.Close()
			return nil, err
		}
	} else if err := watcher.Add(filepath.Dir(root)); err != nil {
		// Editors replace files on save, so the parent is watched and filtered.
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	changes := make(chan domain.SourceChange, 16)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !info.IsDir() && filepath.Clean(event.Name) != filepath.Clean(root) {
					continue
				}
				if event.Has(fsnotify.Create) && isDir(event.Name) && !s.hidden(event.Name) {
					if err := dirs.add(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
				}
				wasDir := false
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					wasDir = dirs.forget(event.Name)
				}
				change, ok := s.handleFsEvent(event, wasDir)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()
	return changes, nil
}

// handleFsEvent converts an fsnotify event into a change for a supported file.
// A directory that appears or goes away (wasDir) is reported as ChangeUpdated
// for the directory itself, since the files it carried produce no events.
func (s *Source) handleFsEvent(event fsnotify.Event, wasDir bool) (domain.SourceChange, bool) {
	if s.hidden(event.Name) {
		return domain.SourceChange{}, false
	}
	created := event.Has(fsnotify.Create)
	if (created && isDir(event.Name)) || wasDir {
		return domain.SourceChange{
			Type: domain.ChangeUpdated,
			ID:   s.relID(event.Name),
			URI:  absPath(event.Name),
		}, true
	}
	if _, ok := domain.FormatFromPath(event.Name); !ok {
		return domain.SourceChange{}, false
	}

	var changeType domain.ChangeType
	switch {
	case created:
		changeType = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = domain.ChangeDeleted
	default:
		return domain.SourceChange{}, false
	}

	return domain.SourceChange{
		Type: changeType,
		ID:   s.relID(event.Name),
		URI:  absPath(event.Name),
	}, true
}

func (s *Source) relID(path string) string {
	rel, err := filepath.Rel(s.rootPath, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (s *Source) hidden(path string) bool {
	rel, err := filepath.Rel(s.rootPath, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return rel != "." && isHidden(rel)
}

// tree tracks the directories under watch.
type tree struct {
	watcher *fsnotify.Watcher
	dirs    map[string]struct{}
}

func newTree(watcher *fsnotify.Watcher) *tree {
	return &tree{watcher: watcher, dirs: make(map[string]struct{})}
}

// add watches dir and every non-hidden directory below it.
func (t *tree) add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := t.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		t.dirs[filepath.Clean(path)] = struct{}{}
		return nil
	})
}

// forget drops dir and everything below it. Returns false if dir was not watched.
func (t *tree) forget(dir string) bool {
	dir = filepath.Clean(dir)
	if _, ok := t.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for path := range t.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(t.dirs, path)
			_ = t.watcher.Remove(path)
		}
	}
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
