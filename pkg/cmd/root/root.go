package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/constants"
	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/pkg/cmd/browse"
	"github.com/intakehq/intake/pkg/cmd/find"
	"github.com/intakehq/intake/pkg/cmd/leads"
	"github.com/intakehq/intake/pkg/cmd/serve"
	"github.com/intakehq/intake/pkg/cmd/tags"
	"github.com/intakehq/intake/pkg/cmd/views"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "intake",
		Version: constants.Version,
		Short:   "Browse, filter and rank admissions leads from the terminal.",
		Long: heredoc.Doc(`
			intake is a terminal browser for an admissions-lead pipeline. Running it
			with no arguments opens the interactive browser; subcommands cover plain
			listings, fuzzy lookup, saved-view management and the reference sync
			server.

			  intake                          open the browser
			  intake browse --view "Hot"      open the browser on a saved view
			  intake leads --filter leadScore:greaterOrEqual:80
			  intake find --copy
		`),
		RunE: browse.NewCmdBrowse(s).RunE,
	}

	cmd.AddCommand(
		browse.NewCmdBrowse(s),
		leads.NewCmdLeads(s),
		find.NewCmdFind(s),
		views.NewCmdViews(s),
		tags.NewCmdTags(s),
		serve.NewCmdServe(s),
	)

	return cmd, nil
}
