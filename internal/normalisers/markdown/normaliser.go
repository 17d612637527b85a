// Package markdown splits Markdown documents into heading sections.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	atxHeading   = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	fence        = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct {
	decoder *plaintext.Decoder
}

// New creates a new Markdown normaliser that decodes like the plain text one.
func New(decoder *plaintext.Decoder) *Normaliser {
	return &Normaliser{decoder: decoder}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatMarkdown}
}

// Normalise converts a markdown document into one block per heading section.
// Text before the first heading forms an unheaded block.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, enc, err := n.decoder.Decode(raw.ID, raw.Content)
	if err != nil {
		return nil, err
	}

	sections := splitSections(text)
	blocks := make([]domain.TextBlock, 0, len(sections))
	for _, s := range sections {
		body := stripMarkdown(s.body)
		if body == "" {
			continue
		}
		blocks = append(blocks, domain.TextBlock{
			DocumentID: raw.ID,
			Position:   len(blocks) + 1,
			Heading:    s.heading,
			Text:       body,
		})
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      extractMarkdownTitle(sections, raw.URI),
		Format:     domain.FormatMarkdown,
		Blocks:     blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = "markdown"
	doc.Metadata["encoding"] = enc

	return &driven.NormaliseResult{Document: doc}, nil
}

type section struct {
	level   int
	heading string
	body    string
}

// splitSections walks the lines, ignoring headings inside fenced code.
func splitSections(text string) []section {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		out     []section
		cur     section
		body    []string
		inFence string
	)
	flush := func() {
		cur.body = strings.Join(body, "\n")
		if cur.heading != "" || strings.TrimSpace(cur.body) != "" {
			out = append(out, cur)
		}
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if m := fence.FindStringSubmatch(line); m != nil {
			switch {
			case inFence == "":
				inFence = m[1][:1]
			case strings.HasPrefix(m[1], inFence):
				inFence = ""
			}
			continue
		}
		if inFence == "" {
			if m := atxHeading.FindStringSubmatch(line); m != nil {
				flush()
				cur = section{level: len(m[1]), heading: strings.TrimSpace(m[2])}
				continue
			}
		}
		body = append(body, line)
	}
	flush()
	return out
}

// extractMarkdownTitle uses the first H1 heading or falls back to filename.
func extractMarkdownTitle(sections []section, uri string) string {
	for _, s := range sections {
		if s.level == 1 && s.heading != "" {
			return s.heading
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// stripMarkdown removes inline markdown formatting from a section body.
// Code keeps its text; only the markers go.
func stripMarkdown(content string) string {
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")

	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "*", "")

	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
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
