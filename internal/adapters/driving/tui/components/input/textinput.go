// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/styles"
)

// QueryInput wraps a bubbles textinput for typing questions.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQueryInput creates a new query input component.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about a guest situation..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (s *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the label and the input box.
func (s *QueryInput) View() string {
	label := s.styles.Title.Render("Ask: ")
	input := s.styles.InputField.Render(s.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (s *QueryInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *QueryInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (s *QueryInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *QueryInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *QueryInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *QueryInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-9, 20)
}

// Width returns the current width.
func (s *QueryInput) Width() int {
	return s.width
}
