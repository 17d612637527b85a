package normalisers

import (
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/normalisers/doc"
	"github.com/custodia-labs/deskref/internal/normalisers/docx"
	"github.com/custodia-labs/deskref/internal/normalisers/markdown"
	"github.com/custodia-labs/deskref/internal/normalisers/pdf"
	"github.com/custodia-labs/deskref/internal/normalisers/plaintext"
	"github.com/custodia-labs/deskref/internal/normalisers/reference"
	"github.com/custodia-labs/deskref/internal/normalisers/xls"
	"github.com/custodia-labs/deskref/internal/normalisers/xlsx"
)

// RegisterDefaults registers all built-in normalisers with the registry.
// Returns a ConfigurationError if a fallback encoding is unknown.
func RegisterDefaults(r *Registry, s domain.Settings) error {
	decoder, err := plaintext.NewDecoder(s.FallbackEncodings)
	if err != nil {
		return err
	}

	rows := s.RowsPerBlock
	if rows <= 0 {
		rows = domain.DefaultRowsPerBlock
	}

	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(doc.New())
	r.Register(xlsx.New(rows))
	r.Register(xls.New(rows))
	r.Register(plaintext.New(decoder))
	r.Register(markdown.New(decoder))
	r.Register(reference.New())
	return nil
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry(s domain.Settings) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r, s); err != nil {
		return nil, err
	}
	return r, nil
}
