package use

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/viewstore"
)

func NewCmdViewUse(s *state.State) *cobra.Command {
	var setDefault bool

	cmd := &cobra.Command{
		Use:   "use [name]",
		Short: "Select a saved view by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("view name is required")
			}

			s.Views.Initialize(cmd.Context())

			v, ok := findView(s.Views, name)
			if !ok {
				return fmt.Errorf("view %q not found", name)
			}

			selected, err := s.Views.Select(cmd.Context(), v.ID)
			if err != nil {
				return err
			}

			if setDefault {
				if err := markPersonalDefault(cmd, s.Views, selected); err != nil {
					return err
				}
			}

			cmd.Printf("Now using view %q\n", selected.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&setDefault, "default", false, "Also mark the view as your personal default")

	return cmd
}

// markPersonalDefault moves the personal-default marker to the selected
// view. Only one view carries it at a time.
func markPersonalDefault(cmd *cobra.Command, views *viewstore.Manager, target viewstore.View) error {
	for _, f := range views.Folders() {
		for _, v := range f.Views {
			if !v.PersonalDefault || v.ID == target.ID {
				continue
			}
			v.PersonalDefault = false
			if err := views.UpdateView(cmd.Context(), v); err != nil {
				return err
			}
		}
	}

	target.PersonalDefault = true
	return views.UpdateView(cmd.Context(), target)
}

func findView(views *viewstore.Manager, nameOrID string) (viewstore.View, bool) {
	if v, ok := views.FindView(nameOrID); ok {
		return v, true
	}
	for _, f := range views.Folders() {
		for _, v := range f.Views {
			if strings.EqualFold(v.Name, nameOrID) {
				return v, true
			}
		}
	}
	return viewstore.View{}, false
}
