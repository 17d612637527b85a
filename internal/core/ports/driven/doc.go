// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Lists and reads documents (filesystem, in-memory reference)
//   - Normaliser: Turns a raw document into ordered text blocks
//   - NormaliserRegistry: Selects the normaliser for a format
//   - PostProcessorPipeline: Turns normalised documents into chunks
//   - SimilarityBuilder: Derives a query scorer from a chunk set
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, embedding scoring is disabled and hybrid
//     scoring falls back to TF-IDF vectors.
//   - SnapshotStore: Without it, every start re-reads all documents.
//   - QueryLog: Without it, queries are not recorded and gap analysis
//     needs explicit queries.
//   - Watcher: Without it, refreshes are only triggered explicitly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
