package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/intakehq/intake/internal/viewstore"
)

// RootStatus is the shared status line shown under the browse list and by
// the root command. Writers and readers may live on different goroutines.
type RootStatus struct {
	mu   sync.Mutex
	line string
}

func (r *RootStatus) Set(line string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.line = line
	r.mu.Unlock()
}

func (r *RootStatus) Value() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.line
}

// FormatStatus renders the standard status line: lead count, last refresh
// clock time, and where saved views are going.
func FormatStatus(leads int, refreshedAt time.Time, mode viewstore.Mode) string {
	parts := []string{fmt.Sprintf("Leads: %d", leads)}
	if !refreshedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("refreshed %s", refreshedAt.Local().Format("15:04")))
	}
	parts = append(parts, "views: "+mode.String())

	return strings.Join(parts, " · ")
}

// RefreshStatus recomputes and stores the status line in one step.
func (s *State) RefreshStatus(leads int, refreshedAt time.Time) string {
	if s == nil {
		return ""
	}
	line := FormatStatus(leads, refreshedAt, s.Views.Mode())
	s.RootStatus.Set(line)
	return line
}
