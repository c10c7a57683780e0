package browse

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/intakehq/intake/internal/tagging"
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0AF")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			SetString("│")

	headerLabelStyle = lipgloss.NewStyle().
				Bold(true)

	statusBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#0AF", Dark: "#0AF"})

	statusStyle = statusBannerStyle.Render

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0AF")).
				Background(lipgloss.Color("#224"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	listStyle = lipgloss.NewStyle().
			MarginRight(1)

	previewStyle = lipgloss.NewStyle().
			MarginLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#334455"))

	textPromptStyle = previewStyle.Copy()

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cba6f7"))
)

// statusColors maps effective status keys to badge colors.
var statusColors = map[string]string{
	tagging.StatusUrgent:      "203",
	tagging.StatusProgressing: "114",
	tagging.StatusCold:        "39",
}

func statusBadge(status string) string {
	color, ok := statusColors[status]
	if !ok {
		color = "246"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render("●" + " " + status)
}

func tagBadge(name, color string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Render("[" + name + "]")
}
