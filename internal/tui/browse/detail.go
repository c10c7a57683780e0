package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/pipeline"
	"github.com/intakehq/intake/internal/tagging"
)

// detailFields lists the catalog fields the detail pane tabulates, in
// display order. Name and notes render as markdown sections instead.
var detailFields = []string{
	lead.FieldEmail,
	lead.FieldPhone,
	lead.FieldSchool,
	lead.FieldProgram,
	lead.FieldIntakeTerm,
	lead.FieldCountry,
	lead.FieldCity,
	lead.FieldSource,
	lead.FieldOwner,
	lead.FieldStage,
	lead.FieldLeadScore,
	lead.FieldConversionProb,
	lead.FieldSLAState,
	lead.FieldCreatedAt,
	lead.FieldLastContactedAt,
}

// previewKey keys the render cache. Width is part of the key so a resize
// renders fresh instead of serving a wrapped-for-another-width preview, and
// the tag engine version is so status and tag changes invalidate naturally.
type previewKey struct {
	uid     string
	width   int
	version uint64
}

// leadMarkdown builds the markdown document the detail pane renders: a
// heading, the field table, status and tags, and the notes body.
func leadMarkdown(row pipeline.Row, engine *tagging.Engine) string {
	var b strings.Builder

	name := fieldText(row.Lead, lead.FieldFullName)
	if name == "" {
		name = row.Lead.UID
	}
	fmt.Fprintf(&b, "# %s\n\n", name)

	fmt.Fprintf(&b, "**Status:** %s", row.Status)
	if len(row.Tags) > 0 {
		names := make([]string, 0, len(row.Tags))
		for _, id := range row.Tags {
			if rule, ok := engine.Rule(id); ok {
				names = append(names, rule.Name)
			} else {
				names = append(names, id)
			}
		}
		fmt.Fprintf(&b, " · **Tags:** %s", strings.Join(names, ", "))
	}
	b.WriteString("\n\n")

	for _, key := range detailFields {
		value := fieldText(row.Lead, key)
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", lead.LabelOf(key), value)
	}

	if notes := fieldText(row.Lead, lead.FieldNotes); notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", notes)
	}

	return b.String()
}

// renderMarkdown renders the document for a terminal at the given width.
func renderMarkdown(doc string, width int) string {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return doc
	}

	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}
