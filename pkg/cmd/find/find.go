package find

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/fzf"
	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/state"
)

const fetchTimeout = 30 * time.Second

func NewCmdFind(s *state.State) *cobra.Command {
	var copyEmail bool

	cmd := &cobra.Command{
		Use:     "find [query]",
		Aliases: []string{"f"},
		Short:   "Fuzzy-find a lead and print its detail",
		Long: heredoc.Doc(`
			Fuzzy-find a lead by name, stage, status or tag. The preview pane shows
			the lead detail; picking one prints it, and --copy also puts the lead's
			email on the clipboard.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
			defer cancel()

			leads, err := s.Source.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("failed to load leads: %w", err)
			}
			if len(leads) == 0 {
				return errors.New("no leads loaded")
			}

			finder := fzf.NewLeadFinder(s.Engine, "Select a lead")
			picked, err := finder.Run(leads, query)
			if err != nil {
				if errors.Is(err, fzf.ErrNoSelection) {
					cmd.Println("No lead selected")
					return nil
				}
				return err
			}

			cmd.Print(fzf.LeadDocument(picked, s.Engine))

			if copyEmail {
				email, ok := lead.Resolve(picked, lead.FieldEmail)
				if !ok || lead.Text(email) == "" {
					return errors.New("selected lead has no email")
				}
				if err := clipboard.WriteAll(lead.Text(email)); err != nil {
					return fmt.Errorf("failed to copy email: %w", err)
				}
				cmd.Printf("Copied %s\n", lead.Text(email))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyEmail, "copy", "c", false, "Copy the selected lead's email to the clipboard")

	return cmd
}
