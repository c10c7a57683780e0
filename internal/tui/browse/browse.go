// Package browse implements the interactive lead browser.
package browse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/intakehq/intake/internal/cache"
	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/pipeline"
	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/relevance"
	"github.com/intakehq/intake/internal/search"
	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/tagging"
	"github.com/intakehq/intake/internal/viewstore"
	"github.com/intakehq/intake/internal/window"
)

// Model owns the complete browse state: the lead snapshot, every pipeline
// input, the derived snapshot and the alt-view modes. All derivation goes
// through the pipeline so a render never sees a half-updated model.
type Model struct {
	state *state.State
	pipe  *pipeline.Pipeline
	cache *cache.Cache

	keys *keyMap
	help help.Model

	searchInput textinput.Model
	nameInput   textinput.Model
	debounce    *search.Debouncer

	leads       []lead.Lead
	snapshot    pipeline.Snapshot
	refreshedAt time.Time

	filterNode filter.Node
	searchTerm string
	stage      string
	owner      string
	tagIDs     []string
	sort       ranking.Spec
	baseSort   ranking.Spec
	override   map[string]relevance.Score

	activeView viewstore.View

	selected  int
	scrollRow int
	compact   bool

	searching bool
	saving    bool
	picking   bool
	assigning bool

	ranking      bool
	suggestLimit int
	overscan     int

	preview string
	status  string
	width   int
	height  int
}

// New builds the browse model and resolves the starting view: the named one
// when viewID is set, else the configured default view, else ad hoc state.
func New(s *state.State, viewID string) (*Model, error) {
	if s == nil {
		return nil, errors.New("state is required")
	}
	cfg := s.Config

	c, err := cache.New(cfg.UI.PreviewCacheMB)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "name, email or program"
	searchInput.CharLimit = 120

	nameInput := textinput.New()
	nameInput.Placeholder = "view name"
	nameInput.CharLimit = 80

	base := ranking.Spec{
		Key:       cfg.UI.SortKey,
		Direction: ranking.Direction(cfg.UI.SortDirection),
	}

	m := &Model{
		state:        s,
		pipe:         pipeline.New(s.Engine),
		cache:        c,
		keys:         newKeyMap(),
		help:         help.New(),
		searchInput:  searchInput,
		nameInput:    nameInput,
		debounce:     search.NewDebouncer(time.Duration(cfg.Search.DebounceMS) * time.Millisecond),
		sort:         base,
		baseSort:     base,
		suggestLimit: cfg.Search.SuggestionLimit,
		overscan:     cfg.UI.Overscan,
		compact:      true,
	}

	s.Views.Initialize(context.Background())
	s.Views.SetOnDowngrade(func(error) {
		m.status = statusStyle("View sync unavailable, continuing with local views")
	})

	if viewID != "" {
		v, ok := s.Views.FindView(viewID)
		if !ok {
			v, ok = findViewByName(s.Views, viewID)
		}
		if !ok {
			return nil, fmt.Errorf("view %q not found", viewID)
		}
		if selected, err := s.Views.Select(context.Background(), v.ID); err == nil {
			v = selected
		}
		m.applyView(v)
	} else if v, ok := s.Views.DefaultView(); ok {
		m.applyView(v)
	}

	return m, nil
}

// Run starts the browse program and blocks until it exits.
func Run(s *state.State, viewID string) error {
	m, err := New(s, viewID)
	if err != nil {
		return err
	}
	defer m.debounce.Close()

	if _, err := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithAltScreen()).Run(); err != nil {
		// Restoring the terminal after a suspended editor can surface
		// EAGAIN from stdin; the session itself ended cleanly.
		if strings.Contains(err.Error(), "resource temporarily unavailable") {
			os.Exit(0)
		}
		return fmt.Errorf("error running browse ui: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		fetchLeads(m.state.Source),
		listenSearch(m.debounce),
		watchChanges(m.state.Watcher),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.searchInput.Width = clampInt(m.width/2-8, 12, 80)
		m.nameInput.Width = m.searchInput.Width
		m.rebuild()
		return m, nil

	case leadsMsg:
		if msg.err != nil {
			m.status = statusStyle(fmt.Sprintf("Failed to load leads: %v", msg.err))
			return m, nil
		}
		m.leads = msg.leads
		m.refreshedAt = time.Now()
		m.state.RefreshStatus(len(m.leads), m.refreshedAt)
		m.rebuild()
		return m, nil

	case sourceChangedMsg:
		m.status = statusStyle("Leads changed on disk, refreshing")
		return m, tea.Batch(fetchLeads(m.state.Source), watchChanges(m.state.Watcher))

	case searchSettledMsg:
		m.searchTerm = strings.TrimSpace(string(msg))
		m.rebuild()
		return m, listenSearch(m.debounce)

	case scoresMsg:
		m.ranking = false
		switch {
		case msg.err != nil:
			m.override = nil
			m.status = statusStyle(fmt.Sprintf("Relevance ranking unavailable: %v", msg.err))
		case len(msg.scores) == 0:
			m.override = nil
			m.status = statusStyle("Relevance service returned no scores")
		default:
			m.override = msg.scores
			m.status = statusStyle("Relevance ranking applied")
		}
		m.rebuild()
		return m, nil

	case noticeMsg:
		m.status = statusStyle(string(msg))
		return m, nil

	case watcherClosedMsg, searchClosedMsg:
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.handleSearchUpdate(msg)
		case m.saving:
			return m.handleSaveUpdate(msg)
		case m.picking:
			return m.handleTagPickUpdate(msg)
		case m.assigning:
			return m.handleAssignUpdate(msg)
		default:
			return m.handleBrowseUpdate(msg)
		}
	}

	return m, nil
}

func (m *Model) handleBrowseUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.cursorUp):
		m.moveSelection(-1)

	case key.Matches(msg, m.keys.cursorDown):
		m.moveSelection(1)

	case key.Matches(msg, m.keys.pageUp):
		m.moveSelection(-m.maxRows())

	case key.Matches(msg, m.keys.pageDown):
		m.moveSelection(m.maxRows())

	case key.Matches(msg, m.keys.gotoTop):
		m.selected = 0
		m.rebuild()

	case key.Matches(msg, m.keys.gotoBottom):
		m.selected = m.snapshot.Matched - 1
		m.rebuild()

	case key.Matches(msg, m.keys.focusSearch):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.toggleDisplay):
		m.compact = !m.compact
		m.rebuild()

	case key.Matches(msg, m.keys.cycleSort):
		m.advanceSortKey()

	case key.Matches(msg, m.keys.flipSort):
		m.sort.Direction = m.sort.Direction.Flip()
		m.rebuild()

	case key.Matches(msg, m.keys.cycleStage):
		m.stage = nextValue(m.distinctValues(lead.FieldStage), m.stage)
		m.status = quickFilterNotice("Stage", m.stage)
		m.rebuild()

	case key.Matches(msg, m.keys.cycleOwner):
		m.owner = nextValue(m.distinctValues(lead.FieldOwner), m.owner)
		m.status = quickFilterNotice("Owner", m.owner)
		m.rebuild()

	case key.Matches(msg, m.keys.tagFilter):
		m.picking = true

	case key.Matches(msg, m.keys.assignTag):
		if _, ok := m.selectedRow(); ok {
			m.assigning = true
		}

	case key.Matches(msg, m.keys.markUrgent):
		m.overrideStatus(tagging.StatusUrgent)

	case key.Matches(msg, m.keys.markProgress):
		m.overrideStatus(tagging.StatusProgressing)

	case key.Matches(msg, m.keys.markCold):
		m.overrideStatus(tagging.StatusCold)

	case key.Matches(msg, m.keys.clearStatus):
		m.clearStatusOverride()

	case key.Matches(msg, m.keys.rank):
		return m, m.toggleRanking()

	case key.Matches(msg, m.keys.refresh):
		m.status = statusStyle("Refreshing leads")
		return m, fetchLeads(m.state.Source)

	case key.Matches(msg, m.keys.copyEmail):
		if row, ok := m.selectedRow(); ok {
			return m, copyEmail(row.Lead)
		}

	case key.Matches(msg, m.keys.cycleView):
		m.cycleSavedView()

	case key.Matches(msg, m.keys.pickView):
		m.pickSavedView(msg.String())

	case key.Matches(msg, m.keys.saveView):
		m.saving = true
		m.nameInput.SetValue(m.activeView.Name)
		m.nameInput.CursorEnd()
		m.nameInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.toggleHelpMenu):
		m.help.ShowAll = !m.help.ShowAll
		m.rebuild()
	}

	return m, nil
}

func (m *Model) handleSearchUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.exitAltView):
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchTerm = ""
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.submitAltView):
		m.searching = false
		m.searchInput.Blur()
		m.searchTerm = strings.TrimSpace(m.searchInput.Value())
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.toggleDisplay):
		// Tab completes the first suggestion into the input.
		if sugg := m.suggestions(); len(sugg) > 0 {
			m.searchInput.SetValue(sugg[0].Value)
			m.searchInput.CursorEnd()
			m.debounce.Set(m.searchInput.Value())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.debounce.Set(m.searchInput.Value())
	return m, cmd
}

func (m *Model) handleSaveUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.exitAltView):
		m.saving = false
		m.nameInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.submitAltView):
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.status = statusStyle("View name is required")
			return m, nil
		}
		m.saveCurrentView(name)
		m.saving = false
		m.nameInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleTagPickUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exitAltView), key.Matches(msg, m.keys.tagFilter):
		m.picking = false
		return m, nil
	}

	s := msg.String()
	if s == "0" {
		m.tagIDs = nil
		m.rebuild()
		return m, nil
	}
	if idx, ok := digitIndex(s); ok {
		rules := m.state.Engine.Rules()
		if idx < len(rules) {
			m.tagIDs = toggleString(m.tagIDs, rules[idx].ID)
			m.rebuild()
		}
	}
	return m, nil
}

func (m *Model) handleAssignUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exitAltView), key.Matches(msg, m.keys.assignTag):
		m.assigning = false
		return m, nil
	}

	row, ok := m.selectedRow()
	if !ok {
		m.assigning = false
		return m, nil
	}

	if idx, match := digitIndex(msg.String()); match {
		rules := m.state.Engine.Rules()
		if idx >= len(rules) {
			return m, nil
		}
		id := rules[idx].ID
		var err error
		if containsString(m.state.Engine.ManualTags(row.Lead.UID), id) {
			err = m.state.Engine.RemoveTag(row.Lead.UID, id)
		} else {
			err = m.state.Engine.AssignTag(row.Lead.UID, id)
		}
		if err != nil {
			m.status = statusStyle(fmt.Sprintf("Tag change failed: %v", err))
		}
		m.rebuild()
	}
	return m, nil
}

func (m *Model) View() string {
	header := buildHeader(m.savedViews(), m.activeView.ID, m.sort)

	list := listStyle.Width(m.listWidth()).Render(m.renderList())

	var right string
	switch {
	case m.searching:
		right = m.renderSearchPanel()
	case m.saving:
		right = m.renderSavePanel()
	case m.picking:
		right = m.renderTagPanel(false)
	case m.assigning:
		right = m.renderTagPanel(true)
	default:
		right = m.renderPreviewPanel()
	}

	layout := lipgloss.JoinHorizontal(lipgloss.Top, list, right)
	return appStyle.Render(header + "\n\n" + layout + "\n" + m.renderFooter())
}

// rebuild rederives the snapshot from the current inputs. The second build
// only recomputes the window when ensuring visibility moved the scroll.
func (m *Model) rebuild() {
	m.snapshot = m.pipe.Build(m.inputs())
	m.clampSelection()
	if m.ensureVisible() {
		m.snapshot = m.pipe.Build(m.inputs())
	}
	m.renderPreview()
}

func (m *Model) inputs() pipeline.Inputs {
	h := rowHeight(m.compact)
	return pipeline.Inputs{
		Leads:    m.leads,
		Filter:   m.filterNode,
		Search:   m.searchTerm,
		Stage:    m.stage,
		Owner:    m.owner,
		TagIDs:   m.tagIDs,
		Sort:     m.sort,
		Override: m.override,
		Window: window.Params{
			ScrollOffset:   m.scrollRow * h,
			ItemHeight:     h,
			ViewportHeight: m.listBodyLines(),
			Overscan:       m.overscan,
		},
	}
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.rebuild()
}

func (m *Model) clampSelection() {
	if m.snapshot.Matched == 0 {
		m.selected = 0
		m.scrollRow = 0
		return
	}
	if m.selected >= m.snapshot.Matched {
		m.selected = m.snapshot.Matched - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// ensureVisible scrolls the window so the selection stays on screen.
func (m *Model) ensureVisible() bool {
	rows := m.maxRows()
	prev := m.scrollRow

	if m.selected < m.scrollRow {
		m.scrollRow = m.selected
	}
	if m.selected >= m.scrollRow+rows {
		m.scrollRow = m.selected - rows + 1
	}

	maxScroll := m.snapshot.Matched - rows
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scrollRow > maxScroll {
		m.scrollRow = maxScroll
	}
	if m.scrollRow < 0 {
		m.scrollRow = 0
	}
	return m.scrollRow != prev
}

func (m *Model) selectedRow() (pipeline.Row, bool) {
	if m.selected < 0 || m.selected >= len(m.snapshot.Ordered) {
		return pipeline.Row{}, false
	}
	return m.snapshot.Ordered[m.selected], true
}

// renderPreview renders the selected lead's detail through the cache.
func (m *Model) renderPreview() {
	row, ok := m.selectedRow()
	if !ok {
		m.preview = dimStyle.Render("No lead selected")
		return
	}

	w := m.previewWidth()
	key := previewKey{uid: row.Lead.UID, width: w, version: m.state.Engine.Version()}
	if p, exists := m.cache.Get(key); exists {
		m.preview = p.(string)
		return
	}

	r := renderMarkdown(leadMarkdown(row, m.state.Engine), w)
	if err := m.cache.Put(key, r); err != nil {
		m.status = statusStyle(fmt.Sprintf("Error updating cache: %s", err))
	}
	m.preview = r
}

func (m *Model) overrideStatus(status string) {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	if err := m.state.Engine.OverrideStatus(row.Lead.UID, status); err != nil {
		m.status = statusStyle(fmt.Sprintf("Status override failed: %v", err))
		return
	}
	m.status = statusStyle(fmt.Sprintf("Marked %s %s", fieldText(row.Lead, lead.FieldFullName), status))
	m.rebuild()
}

func (m *Model) clearStatusOverride() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	if _, overridden := m.state.Engine.StatusOverride(row.Lead.UID); !overridden {
		m.status = statusStyle("No status override on this lead")
		return
	}
	if err := m.state.Engine.ClearStatusOverride(row.Lead.UID); err != nil {
		m.status = statusStyle(fmt.Sprintf("Clearing override failed: %v", err))
		return
	}
	m.status = statusStyle("Status override cleared")
	m.rebuild()
}

func (m *Model) advanceSortKey() {
	keys := ranking.Keys()
	next := keys[0].Key
	for i, k := range keys {
		if k.Key == m.sort.Key {
			next = keys[(i+1)%len(keys)].Key
			break
		}
	}
	m.sort.Key = next
	m.rebuild()
}

func (m *Model) toggleRanking() tea.Cmd {
	if m.override != nil {
		m.override = nil
		m.status = statusStyle("Relevance ranking cleared")
		m.rebuild()
		return nil
	}
	if m.state.Ranker == nil {
		m.status = statusStyle("Relevance ranking is not configured")
		return nil
	}
	if _, off := m.state.Ranker.(relevance.Disabled); off {
		m.status = statusStyle("Relevance ranking is not configured")
		return nil
	}
	if m.ranking {
		return nil
	}
	if m.snapshot.Matched == 0 {
		m.status = statusStyle("Nothing to rank")
		return nil
	}

	uids := make([]string, len(m.snapshot.Ordered))
	for i, r := range m.snapshot.Ordered {
		uids[i] = r.Lead.UID
	}
	m.ranking = true
	m.status = statusStyle("Requesting relevance ranking...")
	return requestScores(m.state.Ranker, uids, relevance.Context{
		FilterSummary: m.filterSummary(),
		SortKey:       m.sort.Key,
	})
}

func (m *Model) cycleSavedView() {
	views := m.savedViews()
	if len(views) == 0 {
		m.status = statusStyle("No saved views yet")
		return
	}
	if m.activeView.ID == "" {
		m.selectSaved(views[0].ID)
		return
	}
	for i, v := range views {
		if v.ID == m.activeView.ID {
			if i+1 < len(views) {
				m.selectSaved(views[i+1].ID)
			} else {
				m.resetView()
				m.status = statusStyle("View: ad hoc")
			}
			return
		}
	}
	m.selectSaved(views[0].ID)
}

func (m *Model) pickSavedView(digit string) {
	if digit == "0" {
		m.resetView()
		m.status = statusStyle("View: ad hoc")
		return
	}
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 {
		return
	}
	views := m.savedViews()
	if n > len(views) {
		return
	}
	m.selectSaved(views[n-1].ID)
}

func (m *Model) selectSaved(id string) {
	v, err := m.state.Views.Select(context.Background(), id)
	if err != nil {
		m.status = statusStyle(fmt.Sprintf("Failed to select view: %v", err))
		return
	}
	m.applyView(v)
	m.status = statusStyle("View: " + v.Name)
}

// applyView seeds every pipeline input from the saved view.
func (m *Model) applyView(v viewstore.View) {
	m.activeView = v
	m.filterNode = m.composeViewFilter(v)
	if v.Sort.Key != "" {
		m.sort = v.Sort
	} else {
		m.sort = m.baseSort
	}
	m.tagIDs = append([]string(nil), v.TagIDs...)
	m.rebuild()
}

// composeViewFilter joins the view's inline filter with its referenced
// custom filter. A dangling reference reads as absent.
func (m *Model) composeViewFilter(v viewstore.View) filter.Node {
	if v.CustomFilterID == "" || m.state.Filters == nil {
		return v.Filter
	}
	custom, ok := m.state.Filters.Get(v.CustomFilterID)
	if !ok {
		return v.Filter
	}
	if v.Filter.IsEmpty() {
		return custom.Node
	}
	return filter.AllOf(v.Filter, custom.Node)
}

func (m *Model) resetView() {
	m.activeView = viewstore.View{}
	m.filterNode = filter.Node{}
	m.sort = m.baseSort
	m.tagIDs = nil
	m.rebuild()
}

// saveCurrentView persists the live filter/sort/tag state. Reusing the
// active view's name updates it in place; a new name creates a view in the
// personal folder.
func (m *Model) saveCurrentView(name string) {
	ctx := context.Background()

	if m.activeView.ID != "" && name == m.activeView.Name {
		v := m.activeView
		v.Filter = m.filterNode
		v.Sort = m.sort
		v.TagIDs = append([]string(nil), m.tagIDs...)
		if err := m.state.Views.UpdateView(ctx, v); err != nil {
			m.status = statusStyle(fmt.Sprintf("Failed to update view: %v", err))
			return
		}
		m.activeView = v
		m.status = statusStyle("Updated view " + name)
		return
	}

	created, err := m.state.Views.SaveView(ctx, m.personalFolderID(), viewstore.View{
		Name:   name,
		Filter: m.filterNode,
		Sort:   m.sort,
		TagIDs: append([]string(nil), m.tagIDs...),
	})
	if err != nil {
		m.status = statusStyle(fmt.Sprintf("Failed to save view: %v", err))
		return
	}
	m.activeView = created
	m.status = statusStyle("Saved view " + name)
}

func (m *Model) personalFolderID() string {
	folders := m.state.Views.Folders()
	for _, f := range folders {
		if f.Kind == viewstore.FolderPersonal {
			return f.ID
		}
	}
	if len(folders) > 0 {
		return folders[0].ID
	}
	return ""
}

// savedViews flattens the folder model into the tab order. Archived folders
// stay out of the tabs.
func (m *Model) savedViews() []viewstore.View {
	var out []viewstore.View
	for _, f := range m.state.Views.Folders() {
		if f.Kind == viewstore.FolderArchived {
			continue
		}
		out = append(out, f.Views...)
	}
	return out
}

func (m *Model) suggestions() []search.Suggestion {
	return search.Suggest(m.searchInput.Value(), m.leads, m.suggestLimit)
}

func (m *Model) distinctValues(key string) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, l := range m.leads {
		v, ok := lead.Resolve(l, key)
		if !ok {
			continue
		}
		text := strings.TrimSpace(lead.Text(v))
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		order = append(order, text)
	}
	return order
}

func (m *Model) filterSummary() string {
	var parts []string
	if m.activeView.ID != "" {
		parts = append(parts, "view "+m.activeView.Name)
	} else if !m.filterNode.IsEmpty() {
		parts = append(parts, "custom filter")
	}
	if m.stage != "" {
		parts = append(parts, "stage "+m.stage)
	}
	if m.owner != "" {
		parts = append(parts, "owner "+m.owner)
	}
	if m.searchTerm != "" {
		parts = append(parts, "search "+strconv.Quote(m.searchTerm))
	}
	if len(m.tagIDs) > 0 {
		parts = append(parts, fmt.Sprintf("%d tag chips", len(m.tagIDs)))
	}
	if len(parts) == 0 {
		return "all leads"
	}
	return strings.Join(parts, ", ")
}

// Fixed chrome heights: the two header lines plus a blank, and the footer's
// filter, status and help lines.
const (
	headerLines = 3
	footerLines = 3
)

func (m *Model) listBodyLines() int {
	_, v := appStyle.GetFrameSize()
	lines := m.height - v - headerLines - footerLines
	if min := rowHeight(m.compact); lines < min {
		lines = min
	}
	return lines
}

func (m *Model) maxRows() int {
	rows := m.listBodyLines() / rowHeight(m.compact)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) listWidth() int {
	w := m.width/2 - 2
	if w < 24 {
		w = 24
	}
	return w
}

func (m *Model) previewWidth() int {
	w := m.width - m.listWidth() - 8
	if w < 24 {
		w = 24
	}
	return w
}

func (m *Model) renderList() string {
	if m.snapshot.Matched == 0 {
		empty := "No leads match the current filters."
		if len(m.leads) == 0 {
			empty = "No leads loaded yet."
		}
		return dimStyle.Render(empty)
	}

	slice := m.snapshot.Window
	first := m.scrollRow
	last := first + m.maxRows()
	if last > slice.End {
		last = slice.End
	}
	if last < first {
		last = first
	}

	lines := make([]string, 0, (last-first)+1)
	for i := first; i < last; i++ {
		if i < slice.Start {
			continue
		}
		row := m.snapshot.Visible[i-slice.Start]
		lines = append(lines, renderRow(row, m.state.Engine, m.listWidth(), i == m.selected, m.compact))
	}

	lines = append(lines, dimStyle.Render(fmt.Sprintf(
		"%d-%d of %d matched · %d total",
		first+1, last, m.snapshot.Matched, m.snapshot.Total,
	)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderPreviewPanel() string {
	return previewStyle.Render(
		lipgloss.NewStyle().
			Height(m.listBodyLines()).
			MaxHeight(m.listBodyLines()).
			MaxWidth(m.previewWidth()).
			Render(fmt.Sprintf("%s\n%s", titleStyle.Render("Lead"), m.preview)),
	)
}

func (m *Model) renderSearchPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")

	if sugg := m.suggestions(); len(sugg) > 0 {
		b.WriteString("\n")
		for _, s := range sugg {
			b.WriteString(fmt.Sprintf("%s · %s (%d)\n", dimStyle.Render(s.Label), s.Value, s.Count))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter apply · tab complete · esc clear"))

	return textPromptStyle.Render(
		lipgloss.NewStyle().
			Height(m.listBodyLines()).
			MaxHeight(m.listBodyLines()).
			Padding(0, 2).
			Render(b.String()),
	)
}

func (m *Model) renderSavePanel() string {
	content := fmt.Sprintf("%s\n\n%s\n\n%s",
		titleStyle.Render("Save view"),
		m.nameInput.View(),
		helpStyle.Render("enter save · esc cancel"),
	)
	return textPromptStyle.Render(
		lipgloss.NewStyle().
			Height(m.listBodyLines()).
			MaxHeight(m.listBodyLines()).
			Padding(0, 2).
			Render(content),
	)
}

func (m *Model) renderTagPanel(assign bool) string {
	title := "Tag filters"
	hint := "digits toggle chips · 0 clears · esc done"
	active := func(id string) bool { return containsString(m.tagIDs, id) }

	if assign {
		title = "Tag lead"
		hint = "digits toggle tags on the lead · esc done"
		row, ok := m.selectedRow()
		if ok {
			manual := m.state.Engine.ManualTags(row.Lead.UID)
			active = func(id string) bool { return containsString(manual, id) }
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, r := range m.state.Engine.Rules() {
		marker := "[ ]"
		if active(r.ID) {
			marker = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %d %s\n", marker, i+1, tagBadge(r.Name, m.state.Engine.TagColor(r.ID))))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(hint))

	return textPromptStyle.Render(
		lipgloss.NewStyle().
			Height(m.listBodyLines()).
			MaxHeight(m.listBodyLines()).
			Padding(0, 2).
			Render(b.String()),
	)
}

func (m *Model) renderFooter() string {
	lines := make([]string, 0, 3)

	if summary := m.filterSummary(); summary != "all leads" {
		lines = append(lines, dimStyle.Render("Filters: "+summary))
	}

	statusLine := m.state.RootStatus.Value()
	if statusLine == "" {
		statusLine = "Loading leads..."
	}
	if m.status != "" {
		statusLine += "  " + m.status
	}
	lines = append(lines, statusBannerStyle.Render(statusLine))
	lines = append(lines, m.help.View(m.keys))

	return strings.Join(lines, "\n")
}

func findViewByName(views *viewstore.Manager, name string) (viewstore.View, bool) {
	for _, f := range views.Folders() {
		for _, v := range f.Views {
			if strings.EqualFold(v.Name, name) {
				return v, true
			}
		}
	}
	return viewstore.View{}, false
}

func quickFilterNotice(label, value string) string {
	if value == "" {
		return statusStyle(label + " filter cleared")
	}
	return statusStyle(label + " filter: " + value)
}

func nextValue(values []string, current string) string {
	if len(values) == 0 {
		return ""
	}
	if current == "" {
		return values[0]
	}
	for i, v := range values {
		if strings.EqualFold(v, current) {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return values[0]
}

func digitIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

func toggleString(values []string, v string) []string {
	for i, existing := range values {
		if existing == v {
			return append(values[:i], values[i+1:]...)
		}
	}
	return append(values, v)
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
