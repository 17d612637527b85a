// Package xls extracts sheet rows from legacy binary Excel workbooks using
// xls2csv (from the catdoc package).
package xls

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/normalisers/command"
	"github.com/custodia-labs/deskref/internal/normalisers/tabular"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const toolName = "xls2csv"

// Normaliser handles XLS workbooks. xls2csv does not report sheet names,
// so sheets are headed "Sheet N".
type Normaliser struct {
	runner       command.Runner
	rowsPerBlock int
}

// New creates an XLS normaliser that shells out to xls2csv.
func New(rowsPerBlock int) *Normaliser {
	return NewWithRunner(command.ExecRunner{}, rowsPerBlock)
}

// NewWithRunner creates an XLS normaliser with a custom command runner.
func NewWithRunner(runner command.Runner, rowsPerBlock int) *Normaliser {
	if rowsPerBlock <= 0 {
		rowsPerBlock = domain.DefaultRowsPerBlock
	}
	return &Normaliser{runner: runner, rowsPerBlock: rowsPerBlock}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatXLS}
}

// Normalise converts every sheet to CSV and serialises its rows.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var output []byte
	err := command.WithTempFile(raw.Content, ".xls", func(path string) error {
		var runErr error
		output, runErr = n.runner.Run(ctx, toolName, "-d", "utf-8", path)
		return runErr
	})
	if err != nil {
		return nil, fmt.Errorf("xls2csv failed: %w", err)
	}

	sheets, err := parseSheets(string(output))
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		ID:         raw.ID,
		URI:        raw.URI,
		Title:      titleFromURI(raw.URI),
		Format:     domain.FormatXLS,
		Blocks:     tabular.Blocks(raw.ID, sheets, n.rowsPerBlock),
		Metadata:   copyMetadata(raw.Metadata),
		ModifiedAt: raw.ModifiedAt,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["format"] = string(domain.FormatXLS)
	doc.Metadata["sheet_count"] = len(sheets)

	return &driven.NormaliseResult{Document: doc}, nil
}

// parseSheets splits xls2csv output on form feeds and parses each part as CSV.
func parseSheets(output string) ([]tabular.Sheet, error) {
	parts := strings.Split(output, "\f")
	sheets := make([]tabular.Sheet, 0, len(parts))
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}

		r := csv.NewReader(strings.NewReader(part))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true

		var rows [][]string
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: parsing sheet %d: %w", domain.ErrInvalidInput, i+1, err)
			}
			rows = append(rows, rec)
		}
		sheets = append(sheets, tabular.Sheet{Name: fmt.Sprintf("Sheet %d", i+1), Rows: rows})
	}
	return sheets, nil
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
