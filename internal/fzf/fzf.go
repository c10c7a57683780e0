// Package fzf wraps the fuzzy finder for lead lookup: one line per lead with
// status and tags, a markdown detail preview, and the selected lead returned
// to the caller.
package fzf

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/tagging"
)

// ErrNoSelection reports that the finder closed without a pick.
var ErrNoSelection = fmt.Errorf("no lead selected")

// LeadFinder encapsulates the fuzzy finder functionality.
type LeadFinder struct {
	engine *tagging.Engine
	Header string
	leads  []lead.Lead
}

func NewLeadFinder(engine *tagging.Engine, header string) *LeadFinder {
	return &LeadFinder{engine: engine, Header: header}
}

// Run opens the finder over the given leads and returns the selection.
// Cancelling with esc returns ErrNoSelection.
func (f *LeadFinder) Run(leads []lead.Lead, query string) (lead.Lead, error) {
	f.leads = leads

	idx, err := f.fuzzySelectLead(query)
	if err != nil {
		if err == fuzzyfinder.ErrAbort {
			return lead.Lead{}, ErrNoSelection
		}
		return lead.Lead{}, err
	}
	if idx < 0 || idx >= len(f.leads) {
		return lead.Lead{}, ErrNoSelection
	}
	return f.leads[idx], nil
}

// fuzzySelectLead performs fuzzy selection on the loaded leads.
func (f *LeadFinder) fuzzySelectLead(query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderLeadPreview),
	}

	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	labels := make([]string, len(f.leads))
	for i, l := range f.leads {
		labels[i] = f.leadLabel(l)
	}

	return fuzzyfinder.Find(f.leads, func(i int) string {
		return labels[i]
	}, options...)
}

// leadLabel is the single finder line: name, stage, status and tag names.
func (f *LeadFinder) leadLabel(l lead.Lead) string {
	name := fieldText(l, lead.FieldFullName)
	if name == "" {
		name = l.UID
	}

	parts := []string{name}
	if stage := fieldText(l, lead.FieldStage); stage != "" {
		parts = append(parts, "("+stage+")")
	}
	parts = append(parts, f.engine.EffectiveStatus(l))

	if tags := f.tagNames(l); len(tags) == 0 {
		parts = append(parts, "[No tags]")
	} else {
		parts = append(parts, fmt.Sprintf("[Tags: %s]", strings.Join(tags, ", ")))
	}

	return strings.Join(parts, " ")
}

func (f *LeadFinder) tagNames(l lead.Lead) []string {
	ids := f.engine.EffectiveTags(l)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if rule, ok := f.engine.Rule(id); ok {
			names = append(names, rule.Name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func (f *LeadFinder) renderLeadPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(100),
		glamour.WithColorProfile(termenv.ANSI256),
	)

	markdown, err := r.Render(LeadDocument(f.leads[i], f.engine))
	if err != nil {
		return "Error rendering preview"
	}

	return markdown
}

// previewFields is the field order of the preview document.
var previewFields = []string{
	lead.FieldEmail,
	lead.FieldPhone,
	lead.FieldSchool,
	lead.FieldProgram,
	lead.FieldIntakeTerm,
	lead.FieldCountry,
	lead.FieldOwner,
	lead.FieldStage,
	lead.FieldLeadScore,
	lead.FieldConversionProb,
	lead.FieldLastContactedAt,
}

// LeadDocument builds the markdown the preview pane renders.
func LeadDocument(l lead.Lead, engine *tagging.Engine) string {
	var b strings.Builder

	name := fieldText(l, lead.FieldFullName)
	if name == "" {
		name = l.UID
	}
	fmt.Fprintf(&b, "# %s\n\n**Status:** %s\n\n", name, engine.EffectiveStatus(l))

	for _, key := range previewFields {
		if value := fieldText(l, key); value != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", lead.LabelOf(key), value)
		}
	}

	if notes := fieldText(l, lead.FieldNotes); notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", notes)
	}

	return b.String()
}

func fieldText(l lead.Lead, key string) string {
	v, ok := lead.Resolve(l, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(lead.Text(v))
}
