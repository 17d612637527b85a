// Package tabular turns spreadsheet rows into text blocks.
// The first non-empty row is the header; each later row is written as
// "column: value" pairs so that every block reads on its own.
package tabular

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// CellSeparator joins the cells of one serialised row.
const CellSeparator = " | "

// Sheet is one named table of rows.
type Sheet struct {
	Name string
	Rows [][]string
}

// Blocks serialises sheets into text blocks of at most rowsPerBlock rows.
// Block positions continue from one sheet to the next, starting at 1.
// Empty sheets produce no blocks.
func Blocks(docID string, sheets []Sheet, rowsPerBlock int) []domain.TextBlock {
	if rowsPerBlock <= 0 {
		rowsPerBlock = domain.DefaultRowsPerBlock
	}

	var blocks []domain.TextBlock
	position := 0
	for _, sheet := range sheets {
		for _, text := range serialiseSheet(sheet.Rows, rowsPerBlock) {
			position++
			blocks = append(blocks, domain.TextBlock{
				DocumentID: docID,
				Position:   position,
				Heading:    strings.TrimSpace(sheet.Name),
				Text:       text,
			})
		}
	}
	return blocks
}

// serialiseSheet returns the text of each block for one sheet.
func serialiseSheet(rows [][]string, rowsPerBlock int) []string {
	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	header := normaliseHeader(rows[headerIdx])

	var lines []string
	for _, row := range rows[headerIdx+1:] {
		if line := SerialiseRow(header, row); line != "" {
			lines = append(lines, line)
		}
	}

	// A header-only sheet still carries searchable column names.
	if len(lines) == 0 {
		return []string{strings.Join(nonEmpty(rows[headerIdx]), CellSeparator)}
	}

	var out []string
	for start := 0; start < len(lines); start += rowsPerBlock {
		end := start + rowsPerBlock
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, strings.Join(lines[start:end], "\n"))
	}
	return out
}

// SerialiseRow writes non-empty cells as "column: value" pairs joined by CellSeparator.
func SerialiseRow(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}
		parts = append(parts, name+": "+cell)
	}
	return strings.Join(parts, CellSeparator)
}

func normaliseHeader(row []string) []string {
	header := make([]string, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			cell = fmt.Sprintf("column %d", i+1)
		}
		header[i] = cell
	}
	return header
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func nonEmpty(row []string) []string {
	out := make([]string, 0, len(row))
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); cell != "" {
			out = append(out, cell)
		}
	}
	return out
}
