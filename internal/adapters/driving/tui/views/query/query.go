// Package query provides the question-and-answer view for the TUI.
package query

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskref/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driving"
)

// ErrNoRefresher is reported when a refresh is requested without a refresher.
var ErrNoRefresher = errors.New("refresh not available")

// maxTopK bounds the +/- adjustment.
const maxTopK = 50

// View asks questions against the live index and browses the answers.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retriever driving.Retriever
	refresher driving.Refresher
	corpus    driving.CorpusService
	ctx       context.Context

	topK       int
	lastQuery  string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	showHelp   bool
}

// NewView creates a query view. refresher and corpus may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retriever driving.Retriever,
	refresher driving.Refresher,
	corpus driving.CorpusService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retriever:  retriever,
		refresher:  refresher,
		corpus:     corpus,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for queries and refreshes.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads index statistics.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadStats())
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.QueryCompleted:
		v.handleQueryCompleted(msg)
		return v, nil

	case messages.RefreshCompleted:
		return v, v.handleRefreshCompleted(msg)

	case messages.StatsLoaded:
		if msg.Err == nil && msg.Stats != nil {
			v.statusbar.SetIndexInfo(fmt.Sprintf("%d documents · %d chunks · %s",
				msg.Stats.Documents, msg.Stats.Chunks, msg.Stats.Scorer))
		}
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return v, tea.Quit
	}

	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			q := v.input.Value()
			if q == "" {
				return v, nil
			}
			return v, v.submit(q)
		case tea.KeyEsc:
			if v.list.Count() > 0 {
				v.blurInput()
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(k, v.keymap.Help):
		v.showHelp = !v.showHelp
	case keymap.Matches(k, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(k, v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.refresh()
	case keymap.Matches(k, v.keymap.MoreTopK):
		return v, v.adjustTopK(1)
	case keymap.Matches(k, v.keymap.LessTopK):
		return v, v.adjustTopK(-1)
	case keymap.Matches(k, v.keymap.Back):
		v.showHelp = false
	}
	return v, nil
}

func (v *View) blurInput() {
	v.focusInput = false
	v.input.Blur()
}

func (v *View) submit(q string) tea.Cmd {
	v.lastQuery = q
	v.statusbar.SetState(status.StateQuerying)
	v.blurInput()
	return v.runQuery(q)
}

func (v *View) adjustTopK(delta int) tea.Cmd {
	if v.lastQuery == "" || v.topK == 0 {
		return nil
	}
	next := min(max(v.topK+delta, 1), maxTopK)
	if next == v.topK {
		return nil
	}
	v.topK = next
	v.statusbar.SetState(status.StateQuerying)
	return v.runQuery(v.lastQuery)
}

func (v *View) runQuery(q string) tea.Cmd {
	retriever, ctx := v.retriever, v.ctx
	var opts domain.QueryOptions
	if v.topK > 0 {
		opts = opts.WithTopK(v.topK)
	}
	return func() tea.Msg {
		res, err := retriever.Query(ctx, q, opts)
		return messages.QueryCompleted{Result: res, Err: err}
	}
}

func (v *View) refresh() tea.Cmd {
	if v.refresher == nil {
		v.setError(ErrNoRefresher)
		return nil
	}
	v.statusbar.SetState(status.StateRefreshing)
	refresher, ctx := v.refresher, v.ctx
	return func() tea.Msg {
		res, err := refresher.Refresh(ctx)
		return messages.RefreshCompleted{Result: res, Err: err}
	}
}

func (v *View) loadStats() tea.Cmd {
	if v.corpus == nil {
		return nil
	}
	corpus, ctx := v.corpus, v.ctx
	return func() tea.Msg {
		stats, err := corpus.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

func (v *View) handleQueryCompleted(msg messages.QueryCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.topK = msg.Result.TopK
	v.list.SetResults(msg.Result.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(msg.Result.Len(), msg.Result.TopK)
	v.statusbar.SetState(status.StateResults)
}

func (v *View) handleRefreshCompleted(msg messages.RefreshCompleted) tea.Cmd {
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(fmt.Sprintf("Index %s: %s", msg.Result.Outcome, msg.Result.Reason))

	cmds := []tea.Cmd{v.loadStats()}
	if v.lastQuery != "" && msg.Result.Outcome == domain.OutcomeRebuilt {
		cmds = append(cmds, v.runQuery(v.lastQuery))
	}
	return tea.Batch(cmds...)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("deskref"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.showHelp {
		sections = append(sections, v.renderHelp(), "")
	}
	sections = append(sections, v.list.View())
	if sc := v.list.SelectedResult(); sc != nil && !v.focusInput {
		sections = append(sections, "", v.renderDetail(sc))
	}
	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderDetail(sc *domain.ScoredChunk) string {
	title := v.styles.Heading.Render(list.Title(&sc.Chunk))
	body := v.styles.Normal.Render(sc.Chunk.Content)
	return v.styles.Border.Padding(0, 1).Width(max(v.width-4, 20)).Render(title + "\n" + body)
}

func (v *View) renderHelp() string {
	var lines []string
	for _, group := range v.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("%-8s %s", h.Key, h.Desc))
		}
	}
	return v.styles.Help.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	// Header, input, detail pane and status bar.
	v.list.SetDimensions(width, max(height-16, 4))
	v.statusbar.SetWidth(width)
}

// Results returns the results on screen.
func (v *View) Results() []domain.ScoredChunk {
	return v.list.Results()
}

// TopK returns the top_k of the last answered query, zero before the first.
func (v *View) TopK() int {
	return v.topK
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}
