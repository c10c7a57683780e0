package remove

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/viewstore"
)

func NewCmdViewRemove(s *state.State) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a saved view",
		RunE: func(cmd *cobra.Command, args []string) error {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				return fmt.Errorf("view name is required")
			}

			s.Views.Initialize(cmd.Context())

			v, ok := findView(s.Views, trimmed)
			if !ok {
				return fmt.Errorf("view %q not found", trimmed)
			}

			if err := s.Views.DeleteView(cmd.Context(), v.ID); err != nil {
				return err
			}

			cmd.Printf("Removed view %q\n", v.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name or id of the view to remove")
	cmd.MarkFlagRequired("name")

	return cmd
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
