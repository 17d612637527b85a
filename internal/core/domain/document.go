package domain

import "time"

// Document is the normalised form of a RawDocument.
// Its text is an ordered sequence of blocks; it is immutable once built.
type Document struct {
	// ID matches the RawDocument ID.
	ID string

	// URI is the original location.
	URI string

	// Title is the human-readable title.
	Title string

	// Format is the format the document was read as.
	Format Format

	// Blocks is the extracted text in reading order.
	Blocks []TextBlock

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// ModifiedAt is the source modification time.
	ModifiedAt time.Time
}

// TextBlock is a contiguous span of extracted text.
type TextBlock struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the 1-based page, paragraph, sheet part or section index.
	Position int

	// Heading is the section heading the text sits under, if any.
	Heading string

	// Text is the extracted text.
	Text string
}

// Chunk is the unit of retrieval: a bounded span of text with provenance.
type Chunk struct {
	// ID is deterministic for a given document, section and offset.
	ID string `json:"id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"document_id"`

	// Heading is the section heading, empty for unstructured text.
	Heading string `json:"heading,omitempty"`

	// Content is the chunk text. It never includes the heading.
	Content string `json:"content"`

	// Position is the ordinal position within the document.
	Position int `json:"position"`

	// Start and End are rune offsets within the section text.
	Start int `json:"start"`
	End   int `json:"end"`

	// FirstBlock and LastBlock are the positions of the blocks covered.
	FirstBlock int `json:"first_block"`
	LastBlock  int `json:"last_block"`

	// Embedding is the vector representation, set when an embedding
	// service is configured.
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IndexText returns the text a scorer should index for the chunk.
func (c *Chunk) IndexText() string {
	if c.Heading == "" {
		return c.Content
	}
	return c.Heading + "\n" + c.Content
}
