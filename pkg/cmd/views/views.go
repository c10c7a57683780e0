package views

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	viewsadd "github.com/intakehq/intake/pkg/cmd/views/add"
	viewsfilters "github.com/intakehq/intake/pkg/cmd/views/filters"
	viewslist "github.com/intakehq/intake/pkg/cmd/views/list"
	viewsremove "github.com/intakehq/intake/pkg/cmd/views/remove"
	viewsuse "github.com/intakehq/intake/pkg/cmd/views/use"
)

func NewCmdViews(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved views",
		Long: heredoc.Doc(`
			Manage saved views without opening the browser. Views bundle a filter,
			a sort and tag chips; they live in personal or team folders and sync to
			the configured server when one is reachable.
		`),
	}

	cmd.AddCommand(
		viewsadd.NewCmdViewAdd(s),
		viewsremove.NewCmdViewRemove(s),
		viewslist.NewCmdViewList(s),
		viewsuse.NewCmdViewUse(s),
		viewsfilters.NewCmdFilters(s),
	)

	return cmd
}
