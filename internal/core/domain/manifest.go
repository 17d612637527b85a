package domain

import (
	"sort"
	"time"
)

// ManifestEntry is what change detection knows about one document.
type ManifestEntry struct {
	Format     Format    `json:"format"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Manifest maps document IDs to their scan state.
type Manifest map[string]ManifestEntry

// NewManifest builds a manifest from scanned entries.
func NewManifest(entries []SourceEntry) Manifest {
	m := make(Manifest, len(entries))
	for _, e := range entries {
		m[e.ID] = ManifestEntry{Format: e.Format, Size: e.Size, ModifiedAt: e.ModifiedAt}
	}
	return m
}

// IDs returns the document IDs in sorted order.
func (m Manifest) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ManifestDiff lists the documents that differ between two manifests.
type ManifestDiff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty returns true when nothing changed.
func (d ManifestDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares m (the newer scan) against prev.
// A nil prev means every entry is added.
func (m Manifest) Diff(prev Manifest) ManifestDiff {
	var d ManifestDiff
	for _, id := range m.IDs() {
		old, ok := prev[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		cur := m[id]
		if cur.Size != old.Size || cur.Format != old.Format || !cur.ModifiedAt.Equal(old.ModifiedAt) {
			d.Changed = append(d.Changed, id)
		}
	}
	for _, id := range prev.IDs() {
		if _, ok := m[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	return d
}
