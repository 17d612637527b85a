// Package chunker provides a section-aware sliding-window chunking processor.
//
// Sizes and overlaps are measured in runes. Consecutive blocks sharing a
// heading form a section; chunks never cross a section boundary, and
// consecutive chunks of one section share exactly the configured overlap.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Name is the processor name used in configuration.
const Name = "chunker"

// chunkNamespace scopes the deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("deskref:chunk"))

// Processor splits document blocks into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns a *domain.ConfigurationError if the size is not positive or the
// overlap is not smaller than the size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := domain.ValidateChunking(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document blocks into chunks.
// Input chunks are ignored; this processor creates new chunks from the blocks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk
	for i, s := range sections(doc.Blocks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = p.window(doc, i, s, chunks)
	}
	return chunks, nil
}

// section is a run of consecutive blocks with the same heading.
type section struct {
	heading string
	text    []rune
	// starts holds the rune offset of each block; positions its block position.
	starts    []int
	positions []int
}

func sections(blocks []domain.TextBlock) []section {
	var (
		out []section
		cur *section
	)
	for _, b := range blocks {
		if cur == nil || b.Heading != cur.heading {
			out = append(out, section{heading: b.Heading})
			cur = &out[len(out)-1]
		} else {
			cur.text = append(cur.text, '\n')
		}
		cur.starts = append(cur.starts, len(cur.text))
		cur.positions = append(cur.positions, b.Position)
		cur.text = append(cur.text, []rune(b.Text)...)
	}
	return out
}

// window slides over one section and appends its chunks.
func (p *Processor) window(doc *domain.Document, index int, s section, chunks []domain.Chunk) []domain.Chunk {
	if strings.TrimSpace(string(s.text)) == "" {
		return chunks
	}

	n := len(s.text)
	stride := p.chunkSize - p.overlap
	for start := 0; ; start += stride {
		end := start + p.chunkSize
		if end > n {
			end = n
		}

		first, last := s.blockRange(start, end)
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc.ID, index, s.heading, start),
			DocumentID: doc.ID,
			Heading:    s.heading,
			Content:    string(s.text[start:end]),
			Position:   len(chunks),
			Start:      start,
			End:        end,
			FirstBlock: first,
			LastBlock:  last,
			Metadata:   chunkMetadata(doc),
		})

		if end == n {
			return chunks
		}
	}
}

// blockRange returns the positions of the first and last blocks overlapping [start,end).
func (s section) blockRange(start, end int) (int, int) {
	first, last := s.positions[0], s.positions[0]
	for i, off := range s.starts {
		if off <= start {
			first = s.positions[i]
		}
		if off < end {
			last = s.positions[i]
		}
	}
	return first, last
}

func chunkID(docID string, section int, heading string, start int) string {
	name := fmt.Sprintf("%s\x00%d\x00%s\x00%d", docID, section, heading, start)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

func chunkMetadata(doc *domain.Document) map[string]any {
	m := map[string]any{
		"title":  doc.Title,
		"format": string(doc.Format),
	}
	if doc.URI != "" {
		m["uri"] = doc.URI
	}
	return m
}
