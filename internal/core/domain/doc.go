// Package domain defines the core entities for the deskref retrieval core.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes (or an in-memory payload) read from a source
//   - Document: A normalised document made of ordered TextBlocks
//   - Chunk: A bounded span of text, the unit of retrieval
//   - Manifest: The source snapshot used for change detection
//   - RetrievalResult: The ranked answer to a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
