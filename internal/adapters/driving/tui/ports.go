// Package tui provides an interactive terminal user interface for deskref.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retriever answers queries.
	Retriever driving.Retriever

	// Refresher rebuilds the index on demand. Optional.
	Refresher driving.Refresher

	// Corpus reports index statistics. Optional.
	Corpus driving.CorpusService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
