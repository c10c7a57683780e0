package browse

import (
	"strings"
	"testing"

	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/viewstore"
)

func TestBuildHeaderAdHoc(t *testing.T) {
	t.Parallel()

	got := buildHeader(nil, "", ranking.Spec{Key: "score", Direction: ranking.Descending})

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("header lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "Views:") || !strings.Contains(lines[0], "[0] Ad hoc") {
		t.Fatalf("view line %q missing ad hoc tab", lines[0])
	}
	if !strings.Contains(lines[1], "Sort:") || !strings.Contains(lines[1], "Score") {
		t.Fatalf("sort line %q missing sort keys", lines[1])
	}
	if !strings.Contains(lines[1], "Descending") {
		t.Fatalf("sort line %q missing direction", lines[1])
	}
}

func TestBuildHeaderNumbersViews(t *testing.T) {
	t.Parallel()

	views := []viewstore.View{
		{ID: "v1", Name: "Hot pipeline"},
		{ID: "v2", Name: "My region"},
	}

	got := buildHeader(views, "v2", ranking.Spec{Key: "name", Direction: ranking.Ascending})

	if !strings.Contains(got, "[1] Hot pipeline") {
		t.Fatalf("header %q missing numbered first view", got)
	}
	if !strings.Contains(got, "[2] My region") {
		t.Fatalf("header %q missing numbered second view", got)
	}
}

func TestBuildHeaderStopsNumberingAtNine(t *testing.T) {
	t.Parallel()

	views := make([]viewstore.View, 10)
	for i := range views {
		views[i] = viewstore.View{ID: string(rune('a' + i)), Name: "View " + string(rune('A'+i))}
	}

	got := buildHeader(views, "", ranking.Spec{Key: "score"})

	if !strings.Contains(got, "[9] View I") {
		t.Fatalf("header %q missing ninth numbered view", got)
	}
	if strings.Contains(got, "[10]") {
		t.Fatalf("header %q numbers past the digit keys", got)
	}
	if !strings.Contains(got, "View J") {
		t.Fatalf("header %q dropped the unnumbered view", got)
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ascending", "Ascending"},
		{"descending", "Descending"},
		{"", ""},
		{"x", "X"},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Fatalf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
