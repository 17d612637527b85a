// Package plaintext reads text files, decoding them with UTF-8 or a
// configured fallback encoding, and splits them into paragraphs.
package plaintext

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var paragraphBreak = regexp.MustCompile(`\n[ \t\f]*\n`)

// Normaliser handles plain text documents.
type Normaliser struct {
	decoder *Decoder
}

// New creates a new plain text normaliser.
func New(decoder *Decoder) *Normaliser {
	return &Normaliser{decoder: decoder}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Normalise decodes the document and emits one block per paragraph.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, enc, err := n.decoder.Decode(raw.ID, raw.Content)
	if err != nil {
		return nil, err
	}

	var blocks []domain.TextBlock
	for _, para := range Paragraphs(text) {
		blocks = append(blocks, domain.TextBlock{
			DocumentID: raw.ID,
			Position:   len(blocks) + 1,
			Text:       para,
		})
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      extractTitleFromMetadataOrURI(raw),
		Format:     domain.FormatText,
		Blocks:     blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["encoding"] = enc

	return &driven.NormaliseResult{Document: doc}, nil
}

// Paragraphs splits text on blank lines and drops empty paragraphs.
// Line endings are normalised to \n.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractTitleFromMetadataOrURI checks metadata for title first, then falls back to URI.
func extractTitleFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return extractTitle(raw.URI)
}

// extractTitle extracts a human-readable title from a URI.
func extractTitle(uri string) string {
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
