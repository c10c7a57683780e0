package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/pipeline"
	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/tagging"
)

const fetchTimeout = 30 * time.Second

func NewCmdLeads(s *state.State) *cobra.Command {
	var (
		filterFlags []string
		search      string
		stage       string
		owner       string
		tags        []string
		sortKey     string
		desc        bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"ls"},
		Short:   "List leads as a plain table",
		Long: heredoc.Doc(`
			List leads non-interactively, filtered and sorted the same way the
			browser does. Filters are field:operator:value triples and repeat to
			narrow further; operators are equals, notEquals, contains,
			greaterOrEqual and lessOrEqual.

			  intake leads --filter stage:equals:new --sort score
			  intake leads --filter leadScore:greaterOrEqual:80 --filter owner:equals:dana
			  intake leads --search "data science" --limit 10
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := filter.ParseConjunction(filterFlags)
			if err != nil {
				return err
			}

			spec, err := resolveSort(s, sortKey, desc, cmd.Flags().Changed("desc"))
			if err != nil {
				return err
			}

			tagIDs, err := resolveTags(s.Engine, tags)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
			defer cancel()

			leads, err := s.Source.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("failed to load leads: %w", err)
			}

			snap := pipeline.New(s.Engine).Build(pipeline.Inputs{
				Leads:  leads,
				Filter: node,
				Search: search,
				Stage:  stage,
				Owner:  owner,
				TagIDs: tagIDs,
				Sort:   spec,
			})

			rows := snap.Ordered
			if limit > 0 && limit < len(rows) {
				rows = rows[:limit]
			}

			renderTable(cmd, rows, s.Engine)
			cmd.Printf("%d of %d leads\n", len(rows), snap.Total)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filterFlags, "filter", "f", nil, "Filter as field:operator:value (repeatable)")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search over name, email and program")
	cmd.Flags().StringVar(&stage, "stage", "", "Only leads in this stage")
	cmd.Flags().StringVar(&owner, "owner", "", "Only leads with this owner")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only leads carrying this tag, by id or name (repeatable)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort key: score, name, created, contacted, probability or stage")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending (--desc=false forces ascending)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows to print, 0 for all")

	return cmd
}

// resolveSort builds the sort spec from flags, falling back to the
// configured defaults. Direction only changes when --desc was given
// explicitly, so plain listings match what the browser shows.
func resolveSort(s *state.State, key string, desc, descSet bool) (ranking.Spec, error) {
	spec := ranking.Spec{
		Key:       s.Config.UI.SortKey,
		Direction: ranking.Direction(s.Config.UI.SortDirection),
	}

	if key != "" {
		if !validSortKey(key) {
			return ranking.Spec{}, fmt.Errorf("invalid sort key %q, want one of %s", key, sortKeyList())
		}
		spec.Key = key
	}
	if descSet {
		if desc {
			spec.Direction = ranking.Descending
		} else {
			spec.Direction = ranking.Ascending
		}
	}
	return spec, nil
}

func validSortKey(key string) bool {
	for _, k := range ranking.Keys() {
		if k.Key == key {
			return true
		}
	}
	return false
}

func sortKeyList() string {
	keys := ranking.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Key
	}
	return strings.Join(names, ", ")
}

// resolveTags accepts rule ids or names and returns ids.
func resolveTags(engine *tagging.Engine, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		rule, ok := engine.FindRule(t)
		if !ok {
			return nil, fmt.Errorf("unknown tag %q", t)
		}
		out = append(out, rule.ID)
	}
	return out, nil
}

func renderTable(cmd *cobra.Command, rows []pipeline.Row, engine *tagging.Engine) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Name", "Email", "Stage", "Owner", "Score", "Status", "Tags"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		table.Append([]string{
			fieldText(row.Lead, lead.FieldFullName),
			fieldText(row.Lead, lead.FieldEmail),
			fieldText(row.Lead, lead.FieldStage),
			fieldText(row.Lead, lead.FieldOwner),
			fieldText(row.Lead, lead.FieldLeadScore),
			row.Status,
			tagNames(row.Tags, engine),
		})
	}
	table.Render()
}

func fieldText(l lead.Lead, key string) string {
	v, ok := lead.Resolve(l, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(lead.Text(v))
}

func tagNames(ids []string, engine *tagging.Engine) string {
	if len(ids) == 0 {
		return ""
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if rule, ok := engine.Rule(id); ok {
			names = append(names, rule.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}
