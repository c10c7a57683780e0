package add

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/viewstore"
)

func NewCmdViewAdd(s *state.State) *cobra.Command {
	var (
		name            string
		description     string
		folder          string
		filters         []string
		customFilter    string
		tags            []string
		sortKey         string
		sortDirection   string
		personalDefault bool
		teamDefault     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a saved view",
		RunE: func(cmd *cobra.Command, args []string) error {
			trimmedName := strings.TrimSpace(name)
			if trimmedName == "" {
				return fmt.Errorf("view name is required")
			}

			node, err := filter.ParseConjunction(filters)
			if err != nil {
				return err
			}

			customID, err := resolveCustomFilter(s, customFilter)
			if err != nil {
				return err
			}

			spec, err := parseSort(s, sortKey, sortDirection)
			if err != nil {
				return err
			}

			tagIDs := make([]string, 0, len(tags))
			for _, t := range tags {
				rule, ok := s.Engine.FindRule(strings.TrimSpace(t))
				if !ok {
					return fmt.Errorf("unknown tag %q", t)
				}
				tagIDs = append(tagIDs, rule.ID)
			}

			s.Views.Initialize(cmd.Context())

			folderID, err := resolveFolder(cmd, s, folder)
			if err != nil {
				return err
			}

			saved, err := s.Views.SaveView(cmd.Context(), folderID, viewstore.View{
				Name:            trimmedName,
				Description:     strings.TrimSpace(description),
				Filter:          node,
				Sort:            spec,
				TagIDs:          tagIDs,
				CustomFilterID:  customID,
				PersonalDefault: personalDefault,
				TeamDefault:     teamDefault,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Added view %q (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the view to add")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().StringVar(&folder, "folder", "personal", "Folder to save into (personal, team)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as field:operator:value (repeatable)")
	cmd.Flags().StringVar(&customFilter, "custom-filter", "", "Custom filter to reference, by name or id")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag chips by id or name (repeatable)")
	cmd.Flags().StringVar(&sortKey, "sort-key", "", "Sort key (score, name, created, contacted, probability, stage)")
	cmd.Flags().StringVar(&sortDirection, "sort-direction", "", "Sort direction (ascending, descending)")
	cmd.Flags().BoolVar(&personalDefault, "personal-default", false, "Open this view by default")
	cmd.Flags().BoolVar(&teamDefault, "team-default", false, "Mark as the team default")

	cmd.MarkFlagRequired("name")

	return cmd
}

func parseSort(s *state.State, key, direction string) (ranking.Spec, error) {
	spec := ranking.Spec{
		Key:       s.Config.UI.SortKey,
		Direction: ranking.Direction(s.Config.UI.SortDirection),
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if key != "" {
		found := false
		for _, k := range ranking.Keys() {
			if k.Key == key {
				found = true
				break
			}
		}
		if !found {
			return ranking.Spec{}, fmt.Errorf("invalid sort key: %s", key)
		}
		spec.Key = key
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	switch ranking.Direction(direction) {
	case "":
	case ranking.Ascending, ranking.Descending:
		spec.Direction = ranking.Direction(direction)
	default:
		return ranking.Spec{}, fmt.Errorf("invalid sort direction: %s", direction)
	}

	return spec, nil
}

// resolveCustomFilter maps a custom filter name or id to its id.
func resolveCustomFilter(s *state.State, nameOrID string) (string, error) {
	trimmed := strings.TrimSpace(nameOrID)
	if trimmed == "" {
		return "", nil
	}
	if s.Filters == nil {
		return "", fmt.Errorf("custom filters are unavailable")
	}
	if c, ok := s.Filters.Get(trimmed); ok {
		return c.ID, nil
	}
	for _, c := range s.Filters.List() {
		if strings.EqualFold(c.Name, trimmed) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("custom filter %q not found", nameOrID)
}

// resolveFolder finds the folder of the requested kind, creating it when the
// synced model arrived without one.
func resolveFolder(cmd *cobra.Command, s *state.State, folder string) (string, error) {
	kind := viewstore.FolderKind(strings.ToLower(strings.TrimSpace(folder)))
	if kind != viewstore.FolderPersonal && kind != viewstore.FolderTeam {
		return "", fmt.Errorf("invalid folder %q, want personal or team", folder)
	}

	for _, f := range s.Views.Folders() {
		if f.Kind == kind {
			return f.ID, nil
		}
	}

	name := "Personal"
	if kind == viewstore.FolderTeam {
		name = "Team"
	}
	created, err := s.Views.CreateFolder(cmd.Context(), name, kind)
	if err != nil {
		return "", fmt.Errorf("failed to create %s folder: %w", kind, err)
	}
	return created.ID, nil
}
