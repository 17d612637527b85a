package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

type stubRetriever struct{}

func (stubRetriever) Query(context.Context, string, domain.QueryOptions) (*domain.RetrievalResult, error) {
	return &domain.RetrievalResult{TopK: 5, Results: []domain.ScoredChunk{}}, nil
}

func TestNewApp_RequiresRetriever(t *testing.T) {
	app, err := NewApp(&Ports{})
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingRetriever)
}

func TestApp_DelegatesToQueryView(t *testing.T) {
	app, err := NewApp(&Ports{Retriever: stubRetriever{}})
	require.NoError(t, err)
	app.WithContext(context.Background())

	assert.NotNil(t, app.Init())

	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Contains(t, model.View(), "deskref")
	assert.True(t, app.QueryView().InputFocused())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, err := NewApp(&Ports{Retriever: stubRetriever{}})
	require.NoError(t, err)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
