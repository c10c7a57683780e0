package use

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/viewstore"
)

func setupUseTest(t *testing.T) (*state.State, []viewstore.View) {
	t.Helper()

	views := viewstore.NewManager(nil, nil, nil)
	views.Initialize(context.Background())

	ctx := context.Background()
	var seeded []viewstore.View
	for _, v := range []viewstore.View{
		{Name: "Hot pipeline", PersonalDefault: true},
		{Name: "My region"},
	} {
		saved, err := views.SaveView(ctx, string(viewstore.FolderPersonal), v)
		if err != nil {
			t.Fatalf("failed to seed view %q: %v", v.Name, err)
		}
		seeded = append(seeded, saved)
	}

	return &state.State{Views: views}, seeded
}

func runUse(t *testing.T, st *state.State, args ...string) (string, error) {
	t.Helper()

	cmd := NewCmdViewUse(st)
	cmd.SetArgs(args)
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	err := cmd.Execute()
	return output.String(), err
}

func TestUseCommandSelectsByName(t *testing.T) {
	st, seeded := setupUseTest(t)

	output, err := runUse(t, st, "my region")
	if err != nil {
		t.Fatalf("use command returned error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, `Now using view "My region"`) {
		t.Fatalf("missing confirmation: %s", output)
	}

	selected, ok := st.Views.FindView(seeded[1].ID)
	if !ok {
		t.Fatalf("selected view disappeared")
	}
	if selected.LastUsedAt.Before(seeded[1].LastUsedAt) {
		t.Fatalf("selection should not move LastUsedAt backwards: %v < %v", selected.LastUsedAt, seeded[1].LastUsedAt)
	}
}

func TestUseCommandMovesDefaultMarker(t *testing.T) {
	st, seeded := setupUseTest(t)

	if _, err := runUse(t, st, seeded[1].ID, "--default"); err != nil {
		t.Fatalf("use command returned error: %v", err)
	}

	target, ok := st.Views.FindView(seeded[1].ID)
	if !ok || !target.PersonalDefault {
		t.Fatalf("target should carry the default marker, got %+v", target)
	}

	previous, ok := st.Views.FindView(seeded[0].ID)
	if !ok || previous.PersonalDefault {
		t.Fatalf("previous default should be cleared, got %+v", previous)
	}

	if def, ok := st.Views.DefaultView(); !ok || def.ID != seeded[1].ID {
		t.Fatalf("DefaultView should resolve to the new default, got %+v ok=%v", def, ok)
	}
}

func TestUseCommandUnknownView(t *testing.T) {
	st, _ := setupUseTest(t)

	_, err := runUse(t, st, "does-not-exist")
	if err == nil {
		t.Fatalf("expected not-found error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}
