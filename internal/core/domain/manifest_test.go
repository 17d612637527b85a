package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManifest_Diff(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	prev := NewManifest([]SourceEntry{
		{ID: "a.txt", Format: FormatText, Size: 10, ModifiedAt: t0},
		{ID: "b.pdf", Format: FormatPDF, Size: 20, ModifiedAt: t0},
		{ID: "c.docx", Format: FormatDOCX, Size: 30, ModifiedAt: t0},
	})

	t.Run("identical manifests", func(t *testing.T) {
		d := prev.Diff(prev)
		assert.True(t, d.Empty())
	})

	t.Run("detects added removed and changed", func(t *testing.T) {
		cur := NewManifest([]SourceEntry{
			{ID: "a.txt", Format: FormatText, Size: 10, ModifiedAt: t0},
			{ID: "b.pdf", Format: FormatPDF, Size: 20, ModifiedAt: t1},
			{ID: "d.md", Format: FormatMarkdown, Size: 5, ModifiedAt: t1},
		})

		d := cur.Diff(prev)
		assert.False(t, d.Empty())
		assert.Equal(t, []string{"d.md"}, d.Added)
		assert.Equal(t, []string{"c.docx"}, d.Removed)
		assert.Equal(t, []string{"b.pdf"}, d.Changed)
	})

	t.Run("size change alone counts", func(t *testing.T) {
		cur := NewManifest([]SourceEntry{
			{ID: "a.txt", Format: FormatText, Size: 11, ModifiedAt: t0},
			{ID: "b.pdf", Format: FormatPDF, Size: 20, ModifiedAt: t0},
			{ID: "c.docx", Format: FormatDOCX, Size: 30, ModifiedAt: t0},
		})

		assert.Equal(t, []string{"a.txt"}, cur.Diff(prev).Changed)
	})

	t.Run("nil previous means everything added", func(t *testing.T) {
		d := prev.Diff(nil)
		assert.Equal(t, []string{"a.txt", "b.pdf", "c.docx"}, d.Added)
	})

	t.Run("empty against empty", func(t *testing.T) {
		assert.True(t, Manifest{}.Diff(nil).Empty())
	})
}

func TestManifest_IDsSorted(t *testing.T) {
	m := Manifest{"z": {}, "a": {}, "m": {}}
	assert.Equal(t, []string{"a", "m", "z"}, m.IDs())
}
