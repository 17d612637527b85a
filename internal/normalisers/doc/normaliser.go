// Package doc extracts text from legacy binary Word documents using catdoc.
package doc

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

const toolName = "catdoc"

// Normaliser handles DOC documents. Each paragraph becomes one block.
type Normaliser struct {
	runner command.Runner
}

// New creates a DOC normaliser that shells out to catdoc.
func New() *Normaliser {
	return &Normaliser{runner: command.ExecRunner{}}
}

// NewWithRunner creates a DOC normaliser with a custom command runner.
func NewWithRunner(runner command.Runner) *Normaliser {
	return &Normaliser{runner: runner}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOC}
}

// Normalise extracts paragraphs. catdoc -w writes each paragraph on one line.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var output []byte
	err := command.WithTempFile(raw.Content, ".doc", func(path string) error {
		var runErr error
		output, runErr = n.runner.Run(ctx, toolName, "-w", "-d", "utf-8", path)
		return runErr
	})
	if err != nil {
		return nil, fmt.Errorf("catdoc failed: %w", err)
	}

	var blocks []domain.TextBlock
	for _, line := range strings.Split(strings.ReplaceAll(string(output), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\f", ""))
		if line == "" {
			continue
		}
		blocks = append(blocks, domain.TextBlock{
			DocumentID: raw.ID,
			Position:   len(blocks) + 1,
			Text:       line,
		})
	}

	title := titleFromURI(raw.URI)
	if len(blocks) > 0 && len(blocks[0].Text) <= 120 {
		title = blocks[0].Text
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      title,
		Format:     domain.FormatDOC,
		Blocks:     blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = string(domain.FormatDOC)

	return &driven.NormaliseResult{Document: doc}, nil
}

func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
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
