// Package docx extracts paragraphs, headings and tables from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// CellSeparator joins the cells of a flattened table row.
const CellSeparator = " | "

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Normalise converts a DOCX document into blocks in body order.
// Heading and Title paragraphs set the heading of the blocks that follow them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %w", domain.ErrInvalidInput, err)
	}

	var blocks []domain.TextBlock
	if body, ok := readPart(reader, "word/document.xml"); ok {
		blocks, err = parseBody(raw.ID, body)
		if err != nil {
			return nil, err
		}
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      extractTitle(reader, raw.URI),
		Format:     domain.FormatDOCX,
		Blocks:     blocks,
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = string(domain.FormatDOCX)

	return &driven.NormaliseResult{Document: doc}, nil
}

// readPart returns the contents of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, bool) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, false
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, false
		}
		return content, true
	}
	return nil, false
}

// bodyParser walks word/document.xml and emits blocks.
type bodyParser struct {
	docID   string
	blocks  []domain.TextBlock
	heading string

	para      strings.Builder
	paraStyle string
	inText    bool

	tableDepth int
	rows       [][]string
	row        []string
	cell       []string
}

// parseBody streams the document body so paragraphs and tables keep their order.
func parseBody(docID string, content []byte) ([]domain.TextBlock, error) {
	p := &bodyParser{docID: docID}
	dec := xml.NewDecoder(bytes.NewReader(content))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing document.xml: %w", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			if p.inText {
				p.para.Write(t)
			}
		}
	}
	return p.blocks, nil
}

func (p *bodyParser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		p.para.Reset()
		p.paraStyle = ""
	case "pStyle":
		for _, a := range t.Attr {
			if a.Name.Local == "val" {
				p.paraStyle = a.Value
			}
		}
	case "t":
		p.inText = true
	case "tab":
		p.para.WriteByte('\t')
	case "br", "cr":
		p.para.WriteByte('\n')
	case "tbl":
		p.tableDepth++
		if p.tableDepth == 1 {
			p.rows = nil
		}
	case "tr":
		if p.tableDepth == 1 {
			p.row = nil
		}
	case "tc":
		if p.tableDepth == 1 {
			p.cell = nil
		}
	}
}

func (p *bodyParser) end(t xml.EndElement) {
	switch t.Name.Local {
	case "t":
		p.inText = false
	case "p":
		p.endParagraph()
	case "tc":
		if p.tableDepth == 1 {
			p.row = append(p.row, strings.Join(p.cell, " "))
		}
	case "tr":
		if p.tableDepth == 1 {
			p.rows = append(p.rows, p.row)
		}
	case "tbl":
		p.tableDepth--
		if p.tableDepth == 0 {
			p.emitTable()
		}
	}
}

func (p *bodyParser) endParagraph() {
	text := strings.TrimSpace(p.para.String())
	p.para.Reset()

	if p.tableDepth > 0 {
		if text != "" {
			p.cell = append(p.cell, text)
		}
		return
	}

	if isHeadingStyle(p.paraStyle) {
		p.heading = text
		return
	}
	if text == "" {
		return
	}
	p.emit(text)
}

func (p *bodyParser) emitTable() {
	lines := make([]string, 0, len(p.rows))
	for _, row := range p.rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, CellSeparator))
		}
	}
	p.rows = nil
	if len(lines) > 0 {
		p.emit(strings.Join(lines, "\n"))
	}
}

func (p *bodyParser) emit(text string) {
	p.blocks = append(p.blocks, domain.TextBlock{
		DocumentID: p.docID,
		Position:   len(p.blocks) + 1,
		Heading:    p.heading,
		Text:       text,
	})
}

// isHeadingStyle matches Word's built-in Title and Heading N styles.
func isHeadingStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return s == "title" || strings.HasPrefix(s, "heading")
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle extracts the title from docProps/core.xml or falls back to filename.
func extractTitle(reader *zip.Reader, uri string) string {
	if content, ok := readPart(reader, "docProps/core.xml"); ok {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}

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
