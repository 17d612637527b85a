// Package services implements the driving port interfaces.
// Services contain the core logic (ingestion, refresh, retrieval and corpus
// reporting) and orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external process dependencies.
package services
