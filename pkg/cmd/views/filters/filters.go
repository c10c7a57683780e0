package filters

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/state"
)

func NewCmdFilters(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage named custom filters",
		Long: heredoc.Doc(`
			Custom filters are named predicates saved views can reference, so one
			shared definition feeds many views. Conditions are field:operator:value
			triples joined with AND.

			  intake views filters add --name "High scorers" --filter leadScore:greaterOrEqual:80
			  intake views add --name "Hot DS" --custom-filter "High scorers" --filter program:contains:data
		`),
	}

	cmd.AddCommand(
		newCmdAdd(s),
		newCmdList(s),
		newCmdRemove(s),
	)

	return cmd
}

func newCmdAdd(s *state.State) *cobra.Command {
	var (
		name    string
		triples []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a named custom filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				return fmt.Errorf("filter name is required")
			}
			if len(triples) == 0 {
				return fmt.Errorf("at least one --filter triple is required")
			}

			node, err := filter.ParseConjunction(triples)
			if err != nil {
				return err
			}

			custom := filter.Custom{Name: trimmed, Node: node}
			verb := "Added"
			if existing, ok := findCustom(s.Filters, trimmed); ok {
				custom.ID = existing.ID
				verb = "Updated"
			}

			saved, err := s.Filters.Upsert(custom)
			if err != nil {
				return err
			}

			cmd.Printf("%s filter %q (%s)\n", verb, saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the custom filter")
	cmd.Flags().StringArrayVar(&triples, "filter", nil, "Condition as field:operator:value (repeatable)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List custom filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			customs := s.Filters.List()
			if len(customs) == 0 {
				cmd.Println("No custom filters yet.")
				return nil
			}

			for _, c := range customs {
				cmd.Printf("%s (%s, %s)\n", c.Name, c.ID, describeNode(c.Node))
			}
			return nil
		},
	}
}

func newCmdRemove(s *state.State) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a custom filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				return fmt.Errorf("filter name is required")
			}

			c, ok := findCustom(s.Filters, trimmed)
			if !ok {
				return fmt.Errorf("custom filter %q not found", trimmed)
			}

			if err := s.Filters.Remove(c.ID); err != nil {
				return err
			}

			cmd.Printf("Removed filter %q\n", c.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name or id of the filter to remove")
	cmd.MarkFlagRequired("name")

	return cmd
}

func findCustom(lib *filter.Library, nameOrID string) (filter.Custom, bool) {
	if c, ok := lib.Get(nameOrID); ok {
		return c, true
	}
	for _, c := range lib.List() {
		if strings.EqualFold(c.Name, nameOrID) {
			return c, true
		}
	}
	return filter.Custom{}, false
}

func describeNode(n filter.Node) string {
	count := countConditions(n)
	if count == 1 {
		return "1 condition"
	}
	return fmt.Sprintf("%d conditions", count)
}

func countConditions(n filter.Node) int {
	count := 0
	if n.Cond != nil {
		count++
	}
	for _, child := range n.All {
		count += countConditions(child)
	}
	for _, child := range n.Any {
		count += countConditions(child)
	}
	return count
}
