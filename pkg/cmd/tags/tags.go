package tags

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/state"
)

const fetchTimeout = 30 * time.Second

func NewCmdTags(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tag rules and how many leads carry each tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := s.Engine.Rules()
			if len(rules) == 0 {
				cmd.Println("No tag rules defined.")
				return nil
			}

			counts := tagCounts(cmd.Context(), s)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Tag", "ID", "Color", "Conditions", "Leads"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)

			for _, r := range rules {
				count := "-"
				if counts != nil {
					count = strconv.Itoa(counts[r.ID])
				}
				table.Append([]string{
					r.Name,
					r.ID,
					s.Engine.TagColor(r.ID),
					describeConditions(r.Conditions),
					count,
				})
			}
			table.Render()
			return nil
		},
	}

	return cmd
}

// tagCounts fetches the current snapshot and counts effective tags per rule.
// A missing source or a failed fetch drops the counts column instead of
// failing the listing.
func tagCounts(ctx context.Context, s *state.State) map[string]int {
	if s.Source == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	leads, err := s.Source.Fetch(ctx)
	if err != nil {
		return nil
	}

	counts := make(map[string]int)
	for _, l := range leads {
		for _, id := range s.Engine.EffectiveTags(l) {
			counts[id]++
		}
	}
	return counts
}

func describeConditions(conds []filter.Condition) string {
	if len(conds) == 0 {
		return "manual only"
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Value)
	}
	return strings.Join(parts, " and ")
}
