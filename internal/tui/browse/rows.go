package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/pipeline"
	"github.com/intakehq/intake/internal/tagging"
)

// Row heights for the two display modes. The window math depends on every
// row of a mode having the same height.
const (
	compactRowHeight = 1
	cardRowHeight    = 3
)

func rowHeight(compact bool) int {
	if compact {
		return compactRowHeight
	}
	return cardRowHeight
}

// renderRow renders one lead row at the given width. Compact mode is a
// single line; card mode is a three-line block with contact and tag detail.
func renderRow(row pipeline.Row, engine *tagging.Engine, width int, selected, compact bool) string {
	var lines []string
	if compact {
		lines = []string{compactLine(row, engine)}
	} else {
		lines = cardLines(row, engine)
	}

	style := lipgloss.NewStyle().MaxWidth(width)
	if selected {
		style = selectedRowStyle.Copy().MaxWidth(width)
	}
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func compactLine(row pipeline.Row, engine *tagging.Engine) string {
	parts := []string{
		fmt.Sprintf("%-24s", fieldText(row.Lead, lead.FieldFullName)),
		fmt.Sprintf("%3s", scoreText(row.Lead)),
		fmt.Sprintf("%-10s", fieldText(row.Lead, lead.FieldStage)),
		statusBadge(row.Status),
	}
	if badges := tagBadges(row, engine); badges != "" {
		parts = append(parts, badges)
	}
	return strings.Join(parts, "  ")
}

func cardLines(row pipeline.Row, engine *tagging.Engine) []string {
	title := fmt.Sprintf("%s  %s", fieldText(row.Lead, lead.FieldFullName), statusBadge(row.Status))

	meta := []string{}
	if email := fieldText(row.Lead, lead.FieldEmail); email != "" {
		meta = append(meta, email)
	}
	if program := fieldText(row.Lead, lead.FieldProgram); program != "" {
		meta = append(meta, program)
	}
	if owner := fieldText(row.Lead, lead.FieldOwner); owner != "" {
		meta = append(meta, "owner: "+owner)
	}
	meta = append(meta, "score: "+scoreText(row.Lead))
	if prob, ok := numericField(row.Lead, lead.FieldConversionProb); ok {
		meta = append(meta, fmt.Sprintf("conv: %.0f%%", prob*100))
	}

	tags := tagBadges(row, engine)
	if tags == "" {
		tags = dimStyle.Render("no tags")
	}

	return []string{title, "  " + strings.Join(meta, " · "), "  " + tags}
}

// tagBadges renders the row's effective tags per the display preferences.
// Overflow beyond the badge limit collapses into a "+n" marker.
func tagBadges(row pipeline.Row, engine *tagging.Engine) string {
	prefs := engine.Display()
	if !prefs.ShowBadges || len(row.Tags) == 0 {
		return ""
	}

	limit := prefs.BadgeLimit
	if limit <= 0 || limit > len(row.Tags) {
		limit = len(row.Tags)
	}

	badges := make([]string, 0, limit+1)
	for _, id := range row.Tags[:limit] {
		name := id
		if rule, ok := engine.Rule(id); ok {
			name = rule.Name
		}
		badges = append(badges, tagBadge(name, engine.TagColor(id)))
	}
	if hidden := len(row.Tags) - limit; hidden > 0 {
		badges = append(badges, dimStyle.Render(fmt.Sprintf("+%d", hidden)))
	}
	return strings.Join(badges, " ")
}

func fieldText(l lead.Lead, key string) string {
	v, ok := lead.Resolve(l, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(lead.Text(v))
}

func numericField(l lead.Lead, key string) (float64, bool) {
	v, ok := lead.Resolve(l, key)
	if !ok {
		return 0, false
	}
	return lead.Numeric(v)
}

func scoreText(l lead.Lead) string {
	score, ok := numericField(l, lead.FieldLeadScore)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.0f", score)
}
