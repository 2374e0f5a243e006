package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/kamusis/cindex-cli/internal/facet"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [facet [json]]...",
	Short: "Find indexed components whose facets match a filter",
	Long: `Find every component in the index whose manifest satisfies all of the
given facet criteria.

Arguments come in pairs of facet type and JSON fragment. A fragment of ""
or null, or a facet type with no fragment after it, only requires the
facet to be present. Map fragments match any facet that contains at least
the given keys with matching values.

  cindex query fuchsia:component '{"name":"hello"}'
  cindex query fuchsia:program`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	fragments, err := parseQueryArgs(args)
	if err != nil {
		return err
	}
	filter, err := facet.ParseFilter(fragments)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newResolver(cfg)
	if err != nil {
		return err
	}

	matches, err := r.FindMatching(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	fmt.Printf("Results (%d found)\n", len(matches))
	for _, m := range matches {
		writeManifest(os.Stdout, m)
	}
	return nil
}

// parseQueryArgs pairs facet types with the JSON fragment that follows
// them. A trailing facet type gets an empty fragment.
func parseQueryArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		name := args[i]
		if name == "" {
			return nil, fmt.Errorf("argument %d: facet type is empty", i+1)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("facet %s given more than once", name)
		}
		fragment := ""
		if i+1 < len(args) {
			fragment = args[i+1]
		}
		out[name] = fragment
	}
	return out, nil
}
