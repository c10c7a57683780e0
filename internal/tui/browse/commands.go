package browse

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/relevance"
	"github.com/intakehq/intake/internal/search"
	"github.com/intakehq/intake/internal/source"
)

const (
	fetchTimeout = 30 * time.Second
	rankTimeout  = 20 * time.Second
)

type leadsMsg struct {
	leads []lead.Lead
	err   error
}

type sourceChangedMsg struct{}

type watcherClosedMsg struct{}

type searchSettledMsg string

type searchClosedMsg struct{}

type scoresMsg struct {
	scores map[string]relevance.Score
	err    error
}

type noticeMsg string

// fetchLeads loads the full snapshot from the source.
func fetchLeads(src source.Source) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		leads, err := src.Fetch(ctx)
		return leadsMsg{leads: leads, err: err}
	}
}

// watchChanges blocks on the watcher's change channel and resolves to one
// message per change. The caller re-arms it after each message.
func watchChanges(w *source.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return watcherClosedMsg{}
		}
		return sourceChangedMsg{}
	}
}

// listenSearch blocks until the debouncer delivers the next settled term.
func listenSearch(d *search.Debouncer) tea.Cmd {
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		term, ok := <-d.Settled()
		if !ok {
			return searchClosedMsg{}
		}
		return searchSettledMsg(term)
	}
}

// requestScores asks the relevance collaborator to rank the given uids.
func requestScores(r relevance.Ranker, uids []string, rc relevance.Context) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rankTimeout)
		defer cancel()

		scores, err := r.Rank(ctx, uids, rc)
		return scoresMsg{scores: scores, err: err}
	}
}

// copyEmail writes the lead's email to the system clipboard.
func copyEmail(l lead.Lead) tea.Cmd {
	return func() tea.Msg {
		email := fieldText(l, lead.FieldEmail)
		if email == "" {
			return noticeMsg("Selected lead has no email")
		}
		if err := clipboard.WriteAll(email); err != nil {
			return noticeMsg("Copy failed: " + err.Error())
		}
		return noticeMsg("Copied " + email)
	}
}
