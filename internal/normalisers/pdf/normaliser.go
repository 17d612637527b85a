// Package pdf extracts text from PDF documents using pdftotext (poppler).
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/normalisers/command"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const toolName = "pdftotext"

// maxTitleLength bounds the first-line title heuristic.
const maxTitleLength = 200

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext (install poppler)", domain.ErrToolNotFound)

// Normaliser handles PDF documents. Each page becomes one text block.
type Normaliser struct {
	runner command.Runner
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: command.ExecRunner{}}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner command.Runner) *Normaliser {
	return &Normaliser{runner: runner}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Normalise extracts one block per page. Pages without text are skipped
// and reported as warnings.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var output []byte
	err := command.WithTempFile(raw.Content, ".pdf", func(path string) error {
		var runErr error
		output, runErr = n.runner.Run(ctx, toolName, "-enc", "UTF-8", path, "-")
		return runErr
	})
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	blocks, warnings := splitPages(raw.ID, string(output))

	first := ""
	if len(blocks) > 0 {
		first = blocks[0].Text
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      extractTitle(first, raw.URI),
		Format:     domain.FormatPDF,
		Blocks:     blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = string(domain.FormatPDF)
	doc.Metadata["pages"] = pageCount(string(output))

	return &driven.NormaliseResult{Document: doc, Warnings: warnings}, nil
}

// splitPages splits pdftotext output on form feeds.
// pdftotext terminates every page with a form feed, so the trailing
// segment after the last one is not a page.
func splitPages(docID, output string) ([]domain.TextBlock, []domain.Warning) {
	pages := strings.Split(output, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	var blocks []domain.TextBlock
	var warnings []domain.Warning
	for i, page := range pages {
		text := cleanPage(page)
		if text == "" {
			warnings = append(warnings, domain.Warning{
				DocumentID: docID,
				Code:       domain.WarningEmptyPage,
				Message:    fmt.Sprintf("page %d has no extractable text", i+1),
			})
			continue
		}
		blocks = append(blocks, domain.TextBlock{
			DocumentID: docID,
			Position:   i + 1,
			Text:       text,
		})
	}
	return blocks, warnings
}

func pageCount(output string) int {
	pages := strings.Count(output, "\f")
	if pages == 0 && strings.TrimSpace(output) != "" {
		return 1
	}
	return pages
}

// cleanPage trims trailing spaces from lines and collapses runs of blank lines.
func cleanPage(page string) string {
	lines := strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractTitle uses the first short non-empty line, falling back to the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxTitleLength {
			continue
		}
		return line
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if err := command.CheckAvailable(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext from poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
