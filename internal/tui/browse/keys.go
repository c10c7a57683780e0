package browse

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	cursorUp       key.Binding
	cursorDown     key.Binding
	pageUp         key.Binding
	pageDown       key.Binding
	gotoTop        key.Binding
	gotoBottom     key.Binding
	focusSearch    key.Binding
	toggleDisplay  key.Binding
	cycleView      key.Binding
	pickView       key.Binding
	cycleSort      key.Binding
	flipSort       key.Binding
	cycleStage     key.Binding
	cycleOwner     key.Binding
	tagFilter      key.Binding
	assignTag      key.Binding
	markUrgent     key.Binding
	markProgress   key.Binding
	markCold       key.Binding
	clearStatus    key.Binding
	rank           key.Binding
	refresh        key.Binding
	copyEmail      key.Binding
	saveView       key.Binding
	submitAltView  key.Binding
	exitAltView    key.Binding
	toggleHelpMenu key.Binding
	quit           key.Binding
}

func newKeyMap() *keyMap {
	return &keyMap{
		cursorUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		cursorDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		gotoTop: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		gotoBottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		focusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		toggleDisplay: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "display"),
		),
		cycleView: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "view"),
		),
		pickView: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-9", "pick view"),
		),
		cycleSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort"),
		),
		flipSort: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "direction"),
		),
		cycleStage: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "stage filter"),
		),
		cycleOwner: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "owner filter"),
		),
		tagFilter: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tag chips"),
		),
		assignTag: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "assign tag"),
		),
		markUrgent: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "mark urgent"),
		),
		markProgress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "mark progressing"),
		),
		markCold: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mark cold"),
		),
		clearStatus: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear status"),
		),
		rank: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "relevance rank"),
		),
		refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		copyEmail: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy email"),
		),
		saveView: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save view"),
		),
		submitAltView: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
		exitAltView: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		toggleHelpMenu: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (m keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		m.cursorUp,
		m.cursorDown,
		m.focusSearch,
		m.cycleView,
		m.cycleSort,
		m.toggleHelpMenu,
		m.quit,
	}
}

// FullHelp implements help.KeyMap.
func (m keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.cursorUp, m.cursorDown, m.pageUp, m.pageDown, m.gotoTop, m.gotoBottom},
		{m.focusSearch, m.cycleStage, m.cycleOwner, m.tagFilter, m.cycleSort, m.flipSort},
		{m.cycleView, m.pickView, m.saveView, m.toggleDisplay, m.rank, m.refresh},
		{m.assignTag, m.markUrgent, m.markProgress, m.markCold, m.clearStatus, m.copyEmail},
		{m.submitAltView, m.exitAltView, m.toggleHelpMenu, m.quit},
	}
}
