package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

func sampleResults() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Chunk: domain.Chunk{DocumentID: "hotel", Heading: "Billing Disputes", Content: "Listen calmly."}, Score: 0.91},
		{Chunk: domain.Chunk{DocumentID: "faq.txt", Content: "Wifi is free."}, Score: 0.72},
	}
}

func TestResultList_Empty(t *testing.T) {
	l := NewResultList(nil)
	assert.Nil(t, l.SelectedResult())
	assert.Contains(t, l.View(), "No matching guidance")
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, l.Selected())
	l.MoveDown()
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, "faq.txt", l.SelectedResult().Chunk.DocumentID)

	l.SetResults(sampleResults())
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_View(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(80, 20)
	l.SetResults(sampleResults())

	out := l.View()
	assert.Contains(t, out, "Results (2)")
	assert.Contains(t, out, "hotel · Billing Disputes")
	assert.Contains(t, out, "0.91")
	assert.Contains(t, out, "Wifi is free.")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "a.txt", Title(&domain.Chunk{DocumentID: "a.txt"}))
	assert.Equal(t, "ref · Pool", Title(&domain.Chunk{DocumentID: "ref", Heading: "Pool"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
