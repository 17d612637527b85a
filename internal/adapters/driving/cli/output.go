package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/styles"
)

// printer renders command output, styled when writing to a terminal.
type printer struct {
	w      io.Writer
	styles *styles.Styles
	color  bool
}

func newPrinter(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	return &printer{
		w:      w,
		styles: styles.DefaultStyles(),
		color:  isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *printer) title(s string) string   { return p.render(p.styles.Title, s) }
func (p *printer) heading(s string) string { return p.render(p.styles.Heading, s) }
func (p *printer) muted(s string) string   { return p.render(p.styles.Muted, s) }
func (p *printer) warn(s string) string    { return p.render(p.styles.Warning, s) }

func (p *printer) score(v float64) string {
	return p.render(p.styles.ScoreStyle(v), fmt.Sprintf("%.2f", v))
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// indent prefixes every line of s with pad.
func indent(s, pad string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
