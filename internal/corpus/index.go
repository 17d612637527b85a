// Package corpus holds the immutable chunk index and the live reference to it.
//
// An Index is built once and never mutated. Refreshing replaces the whole
// Index through Live, so readers holding an Index keep a consistent view.
package corpus

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Index is a built set of chunks with the scorer derived from them.
type Index struct {
	id       string
	builtAt  time.Time
	chunks   []domain.Chunk
	sim      driven.Similarity
	manifest domain.Manifest
	report   domain.IngestReport
	policy   domain.ChunkPolicy
}

// BuildOption configures Build.
type BuildOption func(*Index)

// WithID keeps a known index ID, e.g. when restoring a snapshot.
func WithID(id string) BuildOption {
	return func(x *Index) {
		if id != "" {
			x.id = id
		}
	}
}

// WithBuiltAt keeps a known build time.
func WithBuiltAt(t time.Time) BuildOption {
	return func(x *Index) {
		if !t.IsZero() {
			x.builtAt = t
		}
	}
}

// WithPolicy records the chunking configuration the chunks were cut with.
func WithPolicy(p domain.ChunkPolicy) BuildOption {
	return func(x *Index) {
		x.policy = p
	}
}

// Build creates a new Index. It copies its inputs and never touches the live index.
func Build(
	ctx context.Context,
	builder driven.SimilarityBuilder,
	chunks []domain.Chunk,
	manifest domain.Manifest,
	report domain.IngestReport,
	opts ...BuildOption,
) (*Index, error) {
	x := &Index{
		id:       uuid.New().String(),
		builtAt:  time.Now().UTC(),
		chunks:   append([]domain.Chunk(nil), chunks...),
		manifest: copyManifest(manifest),
		report:   report,
	}
	for _, opt := range opts {
		opt(x)
	}

	sim, err := builder.Build(ctx, x.chunks)
	if err != nil {
		return nil, fmt.Errorf("building %s scorer: %w", builder.Name(), err)
	}
	x.sim = sim
	return x, nil
}

// Empty returns an index with no chunks. Every query against it returns nothing.
func Empty() *Index {
	return &Index{
		id:       "empty",
		manifest: domain.Manifest{},
		sim:      emptySimilarity{},
	}
}

// ID returns the index identifier.
func (x *Index) ID() string { return x.id }

// BuiltAt returns the build time.
func (x *Index) BuiltAt() time.Time { return x.builtAt }

// Len returns the number of chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Chunk returns the i-th chunk in insertion order.
func (x *Index) Chunk(i int) domain.Chunk { return x.chunks[i] }

// Chunks returns a copy of the chunks in insertion order.
func (x *Index) Chunks() []domain.Chunk {
	return append([]domain.Chunk(nil), x.chunks...)
}

// Scorer returns the name of the scoring backend.
func (x *Index) Scorer() string { return x.sim.Name() }

// Manifest returns a copy of the source manifest the index was built from.
func (x *Index) Manifest() domain.Manifest { return copyManifest(x.manifest) }

// Policy returns the chunking configuration of the build. It is zero for
// the empty index and for snapshots that predate recording it.
func (x *Index) Policy() domain.ChunkPolicy { return x.policy }

// Report returns the ingest report of the build.
func (x *Index) Report() domain.IngestReport { return x.report }

// Scores returns one score per chunk for the query.
func (x *Index) Scores(ctx context.Context, query string) ([]float64, error) {
	return x.sim.Scores(ctx, query)
}

// DocumentIDs returns the distinct documents with at least one chunk, sorted.
func (x *Index) DocumentIDs() []string {
	seen := make(map[string]struct{})
	for i := range x.chunks {
		seen[x.chunks[i].DocumentID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns the persistable form of the index.
func (x *Index) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		IndexID:  x.id,
		BuiltAt:  x.builtAt,
		Scorer:   x.Scorer(),
		Policy:   x.policy,
		Manifest: x.Manifest(),
		Chunks:   x.Chunks(),
		Report:   x.report,
	}
}

// FromSnapshot rebuilds an index from a snapshot with the given scorer.
func FromSnapshot(ctx context.Context, builder driven.SimilarityBuilder, snap *domain.Snapshot) (*Index, error) {
	if snap == nil {
		return nil, domain.ErrInvalidInput
	}
	return Build(ctx, builder, snap.Chunks, snap.Manifest, snap.Report,
		WithID(snap.IndexID), WithBuiltAt(snap.BuiltAt), WithPolicy(snap.Policy))
}

func copyManifest(m domain.Manifest) domain.Manifest {
	out := make(domain.Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type emptySimilarity struct{}

func (emptySimilarity) Name() string { return "none" }

func (emptySimilarity) Scores(context.Context, string) ([]float64, error) {
	return nil, nil
}
