package browse

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/viewstore"
)

// adHocLabel is the pseudo-view shown when no saved view is active.
const adHocLabel = "[0] Ad hoc"

// buildHeader renders the two header lines: the saved-view tabs with the
// active one highlighted, and the sort keys with the active key and
// direction highlighted. Views beyond the number keys still cycle with V.
func buildHeader(views []viewstore.View, activeID string, sort ranking.Spec) string {
	var tabs []string
	if activeID == "" {
		tabs = append(tabs, activeTabStyle.Render(adHocLabel))
	} else {
		tabs = append(tabs, inactiveTabStyle.Render(adHocLabel))
	}
	for i, v := range views {
		label := v.Name
		if i < 9 {
			label = fmt.Sprintf("[%d] %s", i+1, v.Name)
		}
		if v.ID == activeID {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	var sortStatus []string
	for _, k := range ranking.Keys() {
		if k.Key == sort.Key {
			sortStatus = append(sortStatus, activeTabStyle.Render(k.Label))
		} else {
			sortStatus = append(sortStatus, inactiveTabStyle.Render(k.Label))
		}
	}

	var orderStatus []string
	for _, d := range []ranking.Direction{ranking.Ascending, ranking.Descending} {
		label := "[D] " + capitalize(string(d))
		if d == sort.Direction {
			orderStatus = append(orderStatus, activeTabStyle.Render(label))
		} else {
			orderStatus = append(orderStatus, inactiveTabStyle.Render(label))
		}
	}

	viewLine := fmt.Sprintf("%s %s",
		headerLabelStyle.Render("Views:"),
		strings.Join(tabs, dividerStyle.String()),
	)

	sortLine := fmt.Sprintf("%s %s %s %s",
		headerLabelStyle.Render("Sort:"),
		strings.Join(sortStatus, dividerStyle.String()),
		dividerStyle.String(),
		strings.Join(orderStatus, dividerStyle.String()),
	)

	return fmt.Sprintf("%s\n%s", viewLine, sortLine)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
