package domain

// RefreshState is the observable state of the refresh controller.
type RefreshState string

// Refresh states. Failed returns to Idle once reported.
const (
	RefreshIdle     RefreshState = "idle"
	RefreshScanning RefreshState = "scanning"
	RefreshReading  RefreshState = "reading"
	RefreshChunking RefreshState = "chunking"
	RefreshBuilding RefreshState = "building"
	RefreshSwapping RefreshState = "swapping"
	RefreshFailed   RefreshState = "failed"
)

// RefreshOutcome is the result kind of a refresh attempt.
type RefreshOutcome string

// Refresh outcomes.
const (
	// OutcomeRebuilt means a new index was built and swapped in.
	OutcomeRebuilt RefreshOutcome = "rebuilt"

	// OutcomeUnchanged means the sources matched the live index; nothing was built.
	OutcomeUnchanged RefreshOutcome = "unchanged"

	// OutcomeFailed means the build failed and the previous index stays live.
	OutcomeFailed RefreshOutcome = "failed"

	// OutcomeSuperseded means a newer refresh started and this build was discarded.
	OutcomeSuperseded RefreshOutcome = "superseded"
)

// RefreshResult reports one refresh attempt.
type RefreshResult struct {
	Outcome RefreshOutcome `json:"outcome"`
	Reason  string         `json:"reason,omitempty"`
	IndexID string         `json:"index_id"`
	Diff    ManifestDiff   `json:"-"`
	Report  IngestReport   `json:"report"`
	Err     error          `json:"-"`
}
