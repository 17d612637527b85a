package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/logger"
)

// embedBatchSize is the number of chunk texts sent per embedding request.
const embedBatchSize = 64

// ingestJob is one scanned document and the source that can load it.
type ingestJob struct {
	source driven.DocumentSource
	entry  domain.SourceEntry
}

// readResult is the outcome of loading and normalising one document.
type readResult struct {
	doc      *domain.Document
	warnings []domain.Warning
	err      error
}

// chunkResult is the outcome of chunking one document.
type chunkResult struct {
	chunks []domain.Chunk
	err    error
}

// ingester reads and chunks documents in a bounded worker pool.
// Results are stored by job index so the merged output is deterministic.
type ingester struct {
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	workers  int
	maxBytes int64
}

func newIngester(
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	workers int,
	maxBytes int64,
) *ingester {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ingester{
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		workers:  workers,
		maxBytes: maxBytes,
	}
}

// sortJobs orders jobs by document ID.
func sortJobs(jobs []ingestJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].entry.ID < jobs[j].entry.ID
	})
}

// read loads and normalises every job. Per-document failures are returned in
// the results; only cancellation aborts the batch.
func (in *ingester) read(ctx context.Context, jobs []ingestJob) ([]readResult, error) {
	results := make([]readResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = in.readOne(gctx, job)
			if isCancellation(results[i].err) {
				return results[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func (in *ingester) readOne(ctx context.Context, job ingestJob) readResult {
	raw, err := job.source.Load(ctx, job.entry, in.maxBytes)
	if err != nil {
		return readResult{err: err}
	}

	res, err := in.registry.Normalise(ctx, raw)
	if err != nil {
		return readResult{err: err}
	}

	warnings := append([]domain.Warning(nil), res.Warnings...)
	doc := res.Document
	if !hasText(doc.Blocks) {
		warnings = append(warnings, domain.Warning{
			DocumentID: doc.ID,
			Code:       domain.WarningEmptyDocument,
			Message:    "no extractable text",
		})
	}
	return readResult{doc: &doc, warnings: warnings}
}

// chunk runs the post-processor pipeline (and the embedder, if any) on every document.
func (in *ingester) chunk(ctx context.Context, docs []*domain.Document) ([]chunkResult, error) {
	results := make([]chunkResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for i, doc := range docs {
		if doc == nil || !hasText(doc.Blocks) {
			continue
		}
		g.Go(func() error {
			results[i] = in.chunkOne(gctx, doc)
			if isCancellation(results[i].err) {
				return results[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func (in *ingester) chunkOne(ctx context.Context, doc *domain.Document) chunkResult {
	chunks, err := in.pipeline.Process(ctx, doc)
	if err != nil {
		return chunkResult{err: fmt.Errorf("chunking: %w", err)}
	}
	if in.embedder != nil && len(chunks) > 0 {
		if err := embedChunks(ctx, in.embedder, chunks); err != nil {
			return chunkResult{err: fmt.Errorf("embedding: %w", err)}
		}
	}
	return chunkResult{chunks: chunks}
}

// embedChunks sets the embedding of each chunk in batches.
func embedChunks(ctx context.Context, svc driven.EmbeddingService, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].IndexText())
		}
		vecs, err := svc.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vecs))
		}
		for i, v := range vecs {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// ingest runs both phases and merges the results into one chunk list and report.
// onStage is called when the chunking phase begins.
func (in *ingester) ingest(
	ctx context.Context,
	jobs []ingestJob,
	scanWarnings []domain.Warning,
	onStage func(domain.RefreshState),
) ([]domain.Chunk, domain.IngestReport, error) {
	report := domain.IngestReport{
		Warnings: append([]domain.Warning(nil), scanWarnings...),
	}

	reads, err := in.read(ctx, jobs)
	if err != nil {
		return nil, report, err
	}

	docs := make([]*domain.Document, len(jobs))
	for i, r := range reads {
		report.Warnings = append(report.Warnings, r.warnings...)
		if r.err != nil {
			logger.Warn("Skipping %s: %v", jobs[i].entry.ID, r.err)
			report.Errors = append(report.Errors, domain.NewDocumentError(jobs[i].entry.ID, r.err))
			continue
		}
		docs[i] = r.doc
	}

	if onStage != nil {
		onStage(domain.RefreshChunking)
	}
	chunked, err := in.chunk(ctx, docs)
	if err != nil {
		return nil, report, err
	}

	var chunks []domain.Chunk
	for i, r := range chunked {
		if docs[i] == nil {
			continue
		}
		if r.err != nil {
			logger.Warn("Skipping %s: %v", docs[i].ID, r.err)
			report.Errors = append(report.Errors, domain.NewDocumentError(docs[i].ID, r.err))
			continue
		}
		report.Documents++
		chunks = append(chunks, r.chunks...)
	}
	report.Chunks = len(chunks)

	if len(chunks) == 0 {
		report.Warnings = append(report.Warnings, domain.Warning{
			Code:    domain.WarningEmptyCorpus,
			Message: "no document produced any text",
		})
	}
	logger.Info("Ingested %d documents into %d chunks (%d errors, %d warnings)",
		report.Documents, report.Chunks, len(report.Errors), len(report.Warnings))
	return chunks, report, nil
}

func hasText(blocks []domain.TextBlock) bool {
	for i := range blocks {
		if strings.TrimSpace(blocks[i].Text) != "" {
			return true
		}
	}
	return false
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
