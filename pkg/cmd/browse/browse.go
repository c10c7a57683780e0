package browse

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/tui/browse"
)

func NewCmdBrowse(s *state.State) *cobra.Command {
	var viewFlag string

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"b"},
		Short:   "Open the interactive lead browser",
		Long: heredoc.Doc(`
			Open the interactive browser: a filterable, sortable list of leads with
			a detail pane, saved-view tabs, tag chips and status overrides. Starts
			on the default saved view unless --view names another one.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return browse.Run(s, viewFlag)
		},
	}

	cmd.Flags().StringVarP(&viewFlag, "view", "v", "", "Saved view to open (name or id)")

	return cmd
}
