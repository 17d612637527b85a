// Package styles provides the colour palette and lipgloss styles shared by
// the TUI and the CLI's terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours deskref renders with.
type Palette struct {
	Accent    lipgloss.Color // titles, selection
	Highlight lipgloss.Color // section headings
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Good      lipgloss.Color // strong matches
	Fair      lipgloss.Color // matches near the threshold
	Alert     lipgloss.Color // errors
	Frame     lipgloss.Color
	Bar       lipgloss.Color
}

// FrontDesk is the default palette: teal accents with amber headings.
var FrontDesk = Palette{
	Accent:    lipgloss.Color("#0F766E"),
	Highlight: lipgloss.Color("#F59E0B"),
	Text:      lipgloss.Color("#CDD6F4"),
	Dim:       lipgloss.Color("#6C7086"),
	Good:      lipgloss.Color("#A6E3A1"),
	Fair:      lipgloss.Color("#F9E2AF"),
	Alert:     lipgloss.Color("#F38BA8"),
	Frame:     lipgloss.Color("#45475A"),
	Bar:       lipgloss.Color("#181825"),
}

// StrongScore is the similarity at or above which a score renders as a strong match.
const StrongScore = 0.8

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	palette Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Heading renders chunk section headings.
	Heading lipgloss.Style

	// Score renders similarity scores; see ScoreStyle for banding.
	Score lipgloss.Style
}

// New builds the styles for a palette.
func New(p Palette) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame)

	return &Styles{
		palette:    p,
		Title:      fg(p.Accent).Bold(true),
		Subtitle:   fg(p.Highlight).Bold(true),
		Normal:     fg(p.Text),
		Muted:      fg(p.Dim),
		Selected:   fg(p.Text).Background(p.Accent).Bold(true),
		Error:      fg(p.Alert),
		Warning:    fg(p.Fair),
		InputField: framed.Padding(0, 1),
		StatusBar:  fg(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:       fg(p.Dim),
		Border:     framed,
		Heading:    fg(p.Highlight),
		Score:      fg(p.Good).Bold(true),
	}
}

// DefaultStyles returns styles for the FrontDesk palette.
func DefaultStyles() *Styles {
	return New(FrontDesk)
}

// ScoreStyle returns the style for a similarity score: strong matches use
// Score, weaker ones the fair colour.
func (s *Styles) ScoreStyle(score float64) lipgloss.Style {
	if score >= StrongScore {
		return s.Score
	}
	return s.Score.Foreground(s.palette.Fair)
}
