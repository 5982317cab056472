package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/repositories"
	"github.com/tunesift/tunesift/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueryView ViewState = iota
	SearchView
	ResultsView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	engine    *recommend.Engine
	favorites *repositories.FavoriteRepository
	feedback  *repositories.FeedbackRepository
	history   *repositories.HistoryRepository
	limit     int

	width  int
	height int

	input      textinput.Model
	resultList list.Model
	result     *models.RecommendResult
	favored    map[string]bool

	progressChan chan recommend.ProgressUpdate
	progress     recommend.ProgressUpdate
	searchResult *models.RecommendResult
	searchErr    error

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *recommend.Engine, favorites *repositories.FavoriteRepository, feedback *repositories.FeedbackRepository, history *repositories.HistoryRepository, limit int) *Model {
	input := textinput.New()
	input.Placeholder = "track - artist, or just an artist"
	input.Focus()

	return &Model{
		ctx:       ctx,
		view:      QueryView,
		engine:    engine,
		favorites: favorites,
		feedback:  feedback,
		history:   history,
		limit:     limit,
		input:     input,
		favored:   map[string]bool{},
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the cursor blink in the query input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QueryView:
			return m.handleQueryKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		}

	case progressMsg:
		m.progress = recommend.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case searchDoneMsg:
		m.progressChan = nil
		if msg.err != nil {
			m.err = msg.err
			m.view = QueryView
			return m, nil
		}
		m.result = msg.result
		m.loadFavored()
		m.rebuildList()
		m.view = ResultsView
		return m, m.rerank()

	case rerankedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.result != nil {
			selected := m.resultList.Index()
			m.result.Items = msg.items
			m.rebuildList()
			m.resultList.Select(selected)
		}
		return m, nil
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case QueryView:
		return m.renderQuery()
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderResults()
	default:
		return ""
	}
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		query := m.input.Value()
		if query == "" {
			return m, nil
		}
		m.err = nil
		return m, m.startSearch(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QueryView
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "f":
		if rec, ok := m.selectedRecommendation(); ok {
			return m, m.toggleFavorite(rec)
		}
	case "l":
		if rec, ok := m.selectedRecommendation(); ok {
			return m, m.react(rec, recommend.ActionLike)
		}
	case "d":
		if rec, ok := m.selectedRecommendation(); ok {
			return m, m.react(rec, recommend.ActionDislike)
		}
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case QueryView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedRecommendation() (models.TrackRecommendation, bool) {
	selected := m.resultList.SelectedItem()
	if selected == nil {
		return models.TrackRecommendation{}, false
	}
	item, ok := selected.(resultItem)
	return item.rec, ok
}

func (m *Model) startSearch(query string) tea.Cmd {
	m.view = SearchView
	m.progress = recommend.ProgressUpdate{}
	m.progressChan = make(chan recommend.ProgressUpdate, 50)

	if m.history != nil {
		// History failures never block a search.
		_ = m.history.Record(query)
	}

	progressChan := m.progressChan
	go func() {
		result, err := m.engine.Recommend(m.ctx, progressChan, query, m.limit)
		m.searchResult = result
		m.searchErr = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return searchDoneMsg{result: m.searchResult, err: m.searchErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			return searchDoneMsg{result: m.searchResult, err: m.searchErr}
		}
		return progressMsg(update)
	}
}

// toggleFavorite flips the stored favorite state of rec and re-ranks.
func (m *Model) toggleFavorite(rec models.TrackRecommendation) tea.Cmd {
	if m.favorites == nil {
		return nil
	}

	key := rec.FavoriteKey()
	if m.favored[key] {
		if err := m.favorites.Remove(key); err != nil && !errors.Is(err, shared.ErrNotFavorite) {
			m.err = err
			return nil
		}
		delete(m.favored, key)
	} else {
		if err := m.favorites.Add(rec); err != nil {
			m.err = err
			return nil
		}
		m.favored[key] = true
	}

	return m.rerank()
}

// react records a like or dislike for rec and re-ranks.
func (m *Model) react(rec models.TrackRecommendation, action string) tea.Cmd {
	if m.feedback == nil {
		return nil
	}

	var err error
	if action == recommend.ActionLike {
		err = m.feedback.Like(rec.FavoriteKey())
	} else {
		err = m.feedback.Dislike(rec.FavoriteKey())
	}
	if err != nil {
		m.err = err
		return nil
	}

	return m.rerank()
}

// rerank re-scores the current result against fresh preference snapshots.
func (m *Model) rerank() tea.Cmd {
	if m.result == nil || m.favorites == nil || m.feedback == nil {
		return nil
	}

	items := m.result.Items
	return func() tea.Msg {
		prefs, err := m.favorites.Snapshot()
		if err != nil {
			return rerankedMsg{err: err}
		}
		feedback, err := m.feedback.Snapshot()
		if err != nil {
			return rerankedMsg{err: err}
		}
		return rerankedMsg{items: recommend.NewScorer(prefs, feedback).Rank(items)}
	}
}

func (m *Model) loadFavored() {
	m.favored = map[string]bool{}
	if m.favorites == nil || m.result == nil {
		return
	}

	snap, err := m.favorites.Snapshot()
	if err != nil {
		return
	}
	for _, rec := range m.result.Items {
		if snap.IsFavorite(rec.FavoriteKey()) {
			m.favored[rec.FavoriteKey()] = true
		}
	}
}

func (m *Model) rebuildList() {
	items := make([]list.Item, len(m.result.Items))
	for i, rec := range m.result.Items {
		items[i] = resultItem{rec: rec, favorite: m.favored[rec.FavoriteKey()]}
	}
	m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.resultList.Title = m.result.Message
	m.resultList.SetSize(m.width-4, m.height-8)
}

func (m *Model) renderQuery() string {
	title := styles.title.Render("tunesift")

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, errLine, m.input.View(), helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Searching")

	var phase string
	switch m.progress.Phase {
	case recommend.Resolve:
		phase = "Resolving identity..."
	case recommend.FetchSimilarTracks:
		phase = "Fetching similar tracks..."
	case recommend.FetchSimilarArtists:
		phase = "Fetching similar artists..."
	case recommend.FetchTopTracks:
		phase = fmt.Sprintf("Collecting top tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case recommend.FetchTags:
		phase = fmt.Sprintf("Fetching tags (%d/%d)", m.progress.Step, m.progress.Total)
	case recommend.Enrich:
		phase = fmt.Sprintf("Finding previews (%d/%d)", m.progress.Step, m.progress.Total)
	case recommend.Rank:
		phase = "Ranking..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResults() string {
	if m.result != nil && len(m.result.Items) == 0 {
		message := styles.warn.Render(m.result.Message)
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", message, helpView)
	}

	helpKeys := []key.Binding{m.keys.favorite, m.keys.like, m.keys.dislike, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}
