package mcp

import (
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
)

// Ports aggregates the driving ports exposed over MCP.
type Ports struct {
	// Retriever answers the query tool.
	Retriever driving.Retriever

	// Refresher backs the refresh tool. Optional.
	Refresher driving.Refresher

	// Corpus backs the stats tool and resources. Optional.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
