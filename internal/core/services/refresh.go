package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
	"github.com/custodia-labs/deskref/internal/corpus"
	"github.com/custodia-labs/deskref/internal/logger"
)

// Ensure RefreshController implements the interfaces.
var (
	_ driving.Refresher = (*RefreshController)(nil)
	_ driving.Watcher   = (*RefreshController)(nil)
)

// RefreshController rebuilds the live index when its sources change.
// A newer Refresh cancels an older one still in progress; the older build is
// discarded with OutcomeSuperseded.
type RefreshController struct {
	live      *corpus.Live
	sources   []driven.DocumentSource
	ingest    *ingester
	builder   driven.SimilarityBuilder
	snapshots driven.SnapshotStore
	watcher   driven.Watcher
	debounce  time.Duration
	policy    domain.ChunkPolicy

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      domain.RefreshState
}

// RefreshOption configures a RefreshController.
type RefreshOption func(*RefreshController)

// WithSnapshotStore persists every successful build and enables Restore.
func WithSnapshotStore(store driven.SnapshotStore) RefreshOption {
	return func(c *RefreshController) {
		c.snapshots = store
	}
}

// WithWatcher sets the change feed used by Watch.
func WithWatcher(w driven.Watcher) RefreshOption {
	return func(c *RefreshController) {
		c.watcher = w
	}
}

// WithEmbedder embeds chunks at ingest time.
func WithEmbedder(svc driven.EmbeddingService) RefreshOption {
	return func(c *RefreshController) {
		c.ingest.embedder = svc
	}
}

// NewRefreshController creates a controller. Chunking and size limits come from settings,
// which must already be valid.
func NewRefreshController(
	live *corpus.Live,
	sources []driven.DocumentSource,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	builder driven.SimilarityBuilder,
	settings domain.Settings,
	opts ...RefreshOption,
) *RefreshController {
	c := &RefreshController{
		live:     live,
		sources:  sources,
		ingest:   newIngester(registry, pipeline, nil, settings.IngestWorkers, settings.MaxDocumentBytes()),
		builder:  builder,
		debounce: time.Duration(settings.WatchDebounceMS) * time.Millisecond,
		policy:   settings.ChunkPolicy(),
		state:    domain.RefreshIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current refresh state.
// RefreshFailed is reported until the next refresh starts.
func (c *RefreshController) State() domain.RefreshState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh rescans every source and rebuilds the index if anything changed,
// including the chunking configuration the live index was cut with.
//
// The returned result is never nil. When the build fails the result has
// OutcomeFailed and the *domain.BuildFailure is also returned as the error;
// the previous index stays live.
func (c *RefreshController) Refresh(ctx context.Context) (*domain.RefreshResult, error) {
	logger.Section("Refresh")

	rctx, gen := c.begin(ctx)
	defer c.end(gen)

	c.setState(gen, domain.RefreshScanning)
	jobs, warnings, err := c.scan(rctx)
	if err != nil {
		return c.fail(ctx, gen, domain.RefreshScanning, err)
	}

	manifest := manifestOf(jobs)
	current := c.live.Current()
	diff := manifest.Diff(current.Manifest())
	policyChanged := current.Policy() != c.policy
	if diff.Empty() && !policyChanged && !current.BuiltAt().IsZero() {
		logger.Info("Sources unchanged, keeping index %s", current.ID())
		c.setState(gen, domain.RefreshIdle)
		return &domain.RefreshResult{
			Outcome: domain.OutcomeUnchanged,
			Reason:  "no source changes",
			IndexID: current.ID(),
			Report:  current.Report(),
		}, nil
	}
	logger.Info("Changes: %d added, %d removed, %d changed",
		len(diff.Added), len(diff.Removed), len(diff.Changed))
	reason := describeDiff(diff)
	if policyChanged && !current.BuiltAt().IsZero() {
		logger.Info("Chunking changed from %d/%d to %d/%d runes",
			current.Policy().Size, current.Policy().Overlap, c.policy.Size, c.policy.Overlap)
		reason += "; chunking changed"
	}

	c.setState(gen, domain.RefreshReading)
	chunks, report, err := c.ingest.ingest(rctx, jobs, warnings, func(s domain.RefreshState) {
		c.setState(gen, s)
	})
	if err != nil {
		return c.fail(ctx, gen, c.State(), err)
	}

	c.setState(gen, domain.RefreshBuilding)
	next, err := corpus.Build(rctx, c.builder, chunks, manifest, report, corpus.WithPolicy(c.policy))
	if err != nil {
		return c.fail(ctx, gen, domain.RefreshBuilding, err)
	}

	if !c.install(gen, next) {
		return superseded(), nil
	}
	logger.Info("Index %s is live (%d chunks)", next.ID(), next.Len())

	c.save(ctx, next)
	c.setState(gen, domain.RefreshIdle)
	return &domain.RefreshResult{
		Outcome: domain.OutcomeRebuilt,
		Reason:  reason,
		IndexID: next.ID(),
		Diff:    diff,
		Report:  report,
	}, nil
}

// Restore installs the last persisted snapshot without reading any document.
// Returns domain.ErrNotFound when no snapshot store is configured or it is empty.
// A snapshot never replaces an index that is already live; the next Refresh
// rebuilds it if it was cut with a different chunking configuration.
func (c *RefreshController) Restore(ctx context.Context) error {
	if c.snapshots == nil {
		return domain.ErrNotFound
	}
	snap, err := c.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	idx, err := corpus.FromSnapshot(ctx, c.builder, snap)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	if !c.installRestored(idx) {
		logger.Debug("Index %s is already live, ignoring snapshot %s", c.live.Current().ID(), idx.ID())
		return nil
	}
	logger.Info("Restored index %s (%d chunks)", idx.ID(), idx.Len())
	return nil
}

// Watch refreshes whenever the watcher reports a change, at most once per
// debounce interval. Changes that arrive while waiting are folded into the
// next refresh. Blocks until ctx is cancelled.
func (c *RefreshController) Watch(ctx context.Context, onRefresh func(*domain.RefreshResult)) error {
	if c.watcher == nil {
		return fmt.Errorf("%w: no watcher configured", domain.ErrInvalidInput)
	}
	changes, err := c.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	limit := rate.Inf
	if c.debounce > 0 {
		limit = rate.Every(c.debounce)
	}
	limiter := rate.NewLimiter(limit, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Source %s: %s", change.Type, change.ID)

			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			if !drain(changes) {
				return nil
			}

			result, err := c.Refresh(ctx)
			if err != nil && !errors.Is(err, domain.ErrBuildFailed) {
				return err
			}
			if onRefresh != nil {
				onRefresh(result)
			}
		}
	}
}

// drain discards queued changes. Returns false if the channel is closed.
func drain(changes <-chan domain.SourceChange) bool {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// begin starts a new generation and cancels the previous one.
func (c *RefreshController) begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	rctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return rctx, c.generation
}

func (c *RefreshController) end(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *RefreshController) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

// setState records s if gen is still the latest refresh.
func (c *RefreshController) setState(gen uint64, s domain.RefreshState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.state = s
	}
}

// install swaps next in if gen is still the latest refresh.
func (c *RefreshController) install(gen uint64, next *corpus.Index) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.state = domain.RefreshSwapping
	c.live.Swap(next)
	return true
}

// installRestored swaps idx in unless a refresh already installed an index.
func (c *RefreshController) installRestored(idx *corpus.Index) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live.Current().BuiltAt().IsZero() {
		return false
	}
	c.live.Swap(idx)
	return true
}

func (c *RefreshController) fail(
	ctx context.Context, gen uint64, stage domain.RefreshState, err error,
) (*domain.RefreshResult, error) {
	if !c.current(gen) {
		return superseded(), nil
	}
	if ctx.Err() != nil {
		c.setState(gen, domain.RefreshIdle)
		return &domain.RefreshResult{Outcome: domain.OutcomeFailed, Reason: "cancelled", Err: ctx.Err()}, ctx.Err()
	}

	failure := &domain.BuildFailure{Stage: stage, Err: err}
	logger.Error("Refresh failed: %v", failure)
	c.setState(gen, domain.RefreshFailed)
	return &domain.RefreshResult{
		Outcome: domain.OutcomeFailed,
		Reason:  failure.Error(),
		IndexID: c.live.Current().ID(),
		Err:     failure,
	}, failure
}

// save persists the index. Failures are logged; the index is already live.
func (c *RefreshController) save(ctx context.Context, idx *corpus.Index) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Save(ctx, idx.Snapshot()); err != nil {
		logger.Warn("Failed to save snapshot %s: %v", idx.ID(), err)
	}
}

// scan lists every source. Documents with the same ID in several sources
// keep the first source's entry.
func (c *RefreshController) scan(ctx context.Context) ([]ingestJob, []domain.Warning, error) {
	var jobs []ingestJob
	var warnings []domain.Warning
	seen := make(map[string]struct{})

	for _, src := range c.sources {
		entries, warns, err := src.Scan(ctx)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		for _, e := range entries {
			if _, dup := seen[e.ID]; dup {
				logger.Warn("Duplicate document id %s ignored", e.ID)
				continue
			}
			seen[e.ID] = struct{}{}
			jobs = append(jobs, ingestJob{source: src, entry: e})
		}
	}
	sortJobs(jobs)
	return jobs, warnings, nil
}

func manifestOf(jobs []ingestJob) domain.Manifest {
	entries := make([]domain.SourceEntry, len(jobs))
	for i, j := range jobs {
		entries[i] = j.entry
	}
	return domain.NewManifest(entries)
}

func superseded() *domain.RefreshResult {
	return &domain.RefreshResult{
		Outcome: domain.OutcomeSuperseded,
		Reason:  "a newer refresh started",
	}
}

func describeDiff(d domain.ManifestDiff) string {
	return fmt.Sprintf("%d added, %d removed, %d changed", len(d.Added), len(d.Removed), len(d.Changed))
}
