package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/views/query"
)

// App is the TUI application following the Elm architecture.
type App struct {
	ports *Ports
	view  *query.View
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	return &App{
		ports: ports,
		view:  query.NewView(styles.DefaultStyles(), nil, ports.Retriever, ports.Refresher, ports.Corpus),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.view.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.view.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.view, cmd = a.view.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	return a.view.View()
}

// QueryView returns the active view.
func (a *App) QueryView() *query.View {
	return a.view
}
