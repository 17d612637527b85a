// Package xlsx extracts sheet rows from Office Open XML workbooks.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/normalisers/tabular"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XLSX workbooks. Each sheet is headed by its name.
type Normaliser struct {
	rowsPerBlock int
}

// New creates an XLSX normaliser that groups rowsPerBlock rows per block.
func New(rowsPerBlock int) *Normaliser {
	if rowsPerBlock <= 0 {
		rowsPerBlock = domain.DefaultRowsPerBlock
	}
	return &Normaliser{rowsPerBlock: rowsPerBlock}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatXLSX}
}

// Normalise reads every sheet in workbook order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	sheets := make([]tabular.Sheet, 0, len(sheetNames))
	for _, name := range sheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		sheets = append(sheets, tabular.Sheet{Name: name, Rows: rows})
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      workbookTitle(f, raw.URI),
		Format:     domain.FormatXLSX,
		Blocks:     tabular.Blocks(raw.ID, sheets, n.rowsPerBlock),
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = string(domain.FormatXLSX)
	doc.Metadata["sheets"] = sheetNames

	return &driven.NormaliseResult{Document: doc}, nil
}

// workbookTitle reads the title document property, falling back to the file name.
func workbookTitle(f *excelize.File, uri string) string {
	if props, err := f.GetDocProps(); err == nil && strings.TrimSpace(props.Title) != "" {
		return strings.TrimSpace(props.Title)
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
