package browse

import (
	"strings"
	"testing"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/pipeline"
	"github.com/intakehq/intake/internal/tagging"
)

func TestLeadMarkdownSections(t *testing.T) {
	t.Parallel()

	row := pipeline.Row{
		Lead: lead.Lead{
			UID: "u1",
			Fields: map[string]any{
				lead.FieldFirstName: "Aki",
				lead.FieldLastName:  "Mori",
				lead.FieldEmail:     "aki@example.edu",
				lead.FieldProgram:   "MSc Data Science",
				lead.FieldStage:     "contacted",
				lead.FieldLeadScore: 85.0,
				lead.FieldNotes:     "Asked about scholarships.",
			},
		},
		Status: "progressing",
		Tags:   []string{"hot-lead"},
	}

	doc := leadMarkdown(row, tagging.NewEngine(nil))

	for _, want := range []string{
		"# Aki Mori",
		"**Status:** progressing",
		"**Tags:** Hot",
		"- **Email:** aki@example.edu",
		"- **Program:** MSc Data Science",
		"## Notes",
		"Asked about scholarships.",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("markdown missing %q:\n%s", want, doc)
		}
	}
}

func TestLeadMarkdownSkipsEmptyFields(t *testing.T) {
	t.Parallel()

	row := pipeline.Row{
		Lead: lead.Lead{
			UID:    "u2",
			Fields: map[string]any{lead.FieldFirstName: "Bela"},
		},
		Status: "cold",
	}

	doc := leadMarkdown(row, tagging.NewEngine(nil))

	if strings.Contains(doc, "**Phone:**") || strings.Contains(doc, "**Email:**") {
		t.Fatalf("markdown lists absent fields:\n%s", doc)
	}
	if strings.Contains(doc, "## Notes") {
		t.Fatalf("markdown has notes section without notes:\n%s", doc)
	}
	if strings.Contains(doc, "**Tags:**") {
		t.Fatalf("markdown has tags label without tags:\n%s", doc)
	}
}

func TestLeadMarkdownFallsBackToUID(t *testing.T) {
	t.Parallel()

	row := pipeline.Row{Lead: lead.Lead{UID: "lead-42"}, Status: "progressing"}

	doc := leadMarkdown(row, tagging.NewEngine(nil))
	if !strings.Contains(doc, "# lead-42") {
		t.Fatalf("markdown heading missing uid fallback:\n%s", doc)
	}
}

func TestRenderMarkdownDefaultsWidth(t *testing.T) {
	t.Parallel()

	out := renderMarkdown("# Title\n\nbody text\n", 0)
	if out == "" {
		t.Fatalf("expected rendered output")
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body text") {
		t.Fatalf("rendered output missing document text:\n%s", out)
	}
}
