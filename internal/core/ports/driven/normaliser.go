package driven

import (
	"context"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Normaliser transforms raw documents into ordered text blocks.
// Each normaliser handles one or more formats (e.g., PDF, DOCX).
// Normalisers hold no mutable state and are safe for concurrent use.
type Normaliser interface {
	// Formats returns the formats this normaliser handles.
	Formats() []domain.Format

	// Normalise extracts the text of a raw document.
	// Failures are scoped to the document; the caller records them and moves on.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Blocks populated.
	Document domain.Document

	// Warnings are non-fatal observations (e.g., empty pages).
	Warnings []domain.Warning
}

// NormaliserRegistry selects the normaliser for a raw document.
type NormaliserRegistry interface {
	// Register adds a normaliser for each of its formats.
	Register(n Normaliser)

	// Get returns the normaliser for a format.
	Get(format domain.Format) (Normaliser, bool)

	// Normalise dispatches to the registered normaliser.
	// Returns domain.ErrUnsupportedType if no normaliser handles the format.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Formats returns every registered format.
	Formats() []domain.Format
}
