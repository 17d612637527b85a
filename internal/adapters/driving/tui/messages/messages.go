// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/deskref/internal/core/domain"
)

// QueryCompleted carries a retrieval result back to the model.
type QueryCompleted struct {
	Result *domain.RetrievalResult
	Err    error
}

// RefreshCompleted carries the outcome of a refresh.
type RefreshCompleted struct {
	Result *domain.RefreshResult
	Err    error
}

// StatsLoaded carries corpus statistics.
type StatsLoaded struct {
	Stats *domain.CorpusStats
	Err   error
}
