package list

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/viewstore"
)

func NewCmdViewList(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved views by folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := s.Views.Initialize(cmd.Context())

			total := 0
			for _, f := range s.Views.Folders() {
				if len(f.Views) == 0 {
					continue
				}
				cmd.Printf("%s\n", f.Name)
				for _, v := range f.Views {
					cmd.Printf("  %s\n", describeView(v))
					total++
				}
			}

			if total == 0 {
				cmd.Println("No saved views yet.")
			}
			cmd.Printf("views: %s\n", mode)
			return nil
		},
	}

	return cmd
}

func describeView(v viewstore.View) string {
	parts := []string{v.Name}

	detail := []string{}
	if v.Sort.Key != "" {
		detail = append(detail, fmt.Sprintf("sort: %s %s", v.Sort.Key, v.Sort.Direction))
	}
	if !v.Filter.IsEmpty() {
		detail = append(detail, "filtered")
	}
	if v.CustomFilterID != "" {
		detail = append(detail, "custom filter")
	}
	if n := len(v.TagIDs); n == 1 {
		detail = append(detail, "1 tag")
	} else if n > 1 {
		detail = append(detail, fmt.Sprintf("%d tags", n))
	}
	if len(detail) > 0 {
		parts = append(parts, "("+strings.Join(detail, ", ")+")")
	}

	if v.PersonalDefault {
		parts = append(parts, "[default]")
	} else if v.TeamDefault {
		parts = append(parts, "[team default]")
	}

	return strings.Join(parts, " ")
}
