package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		name   string
		want   Format
		wantOK bool
	}{
		{"guide.pdf", FormatPDF, true},
		{"Policies/Billing.DOCX", FormatDOCX, true},
		{"legacy.doc", FormatDOC, true},
		{"rates.xlsx", FormatXLSX, true},
		{"old-rates.xls", FormatXLS, true},
		{"notes.txt", FormatText, true},
		{"export.csv", FormatText, true},
		{"readme.md", FormatMarkdown, true},
		{"scenarios.yaml", FormatReference, true},
		{"scenarios.yml", FormatReference, true},
		{"scenarios.json", FormatReference, true},
		{"image.png", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatFromPath(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	for _, f := range []Format{FormatPDF, FormatDOCX, FormatDOC, FormatXLSX, FormatXLS, FormatText, FormatMarkdown, FormatReference} {
		assert.True(t, f.IsValid(), f.String())
	}
	assert.False(t, Format("html").IsValid())
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}

func TestChunk_IndexText(t *testing.T) {
	c := Chunk{Content: "Apologise first."}
	assert.Equal(t, "Apologise first.", c.IndexText())

	c.Heading = "Billing Disputes"
	assert.Equal(t, "Billing Disputes\nApologise first.", c.IndexText())
}

func TestIngestReport(t *testing.T) {
	r := IngestReport{
		Errors:   []DocumentError{{DocumentID: "a"}, {DocumentID: "b"}},
		Warnings: []Warning{{Code: WarningEmptyPage}},
	}

	assert.Equal(t, []string{"a", "b"}, r.Failed())
	assert.True(t, r.HasWarning(WarningEmptyPage))
	assert.False(t, r.HasWarning(WarningEmptyCorpus))
}

func TestRetrievalResult(t *testing.T) {
	r := &RetrievalResult{}
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, r.BestScore())

	r.Results = []ScoredChunk{{Score: 0.9}, {Score: 0.8}}
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 0.9, r.BestScore())
}

func TestQueryOptions(t *testing.T) {
	var o QueryOptions
	assert.Nil(t, o.TopK)

	o2 := o.WithTopK(3).WithThreshold(0.25)
	assert.Nil(t, o.TopK)
	assert.Equal(t, 3, *o2.TopK)
	assert.Equal(t, 0.25, *o2.Threshold)
}
