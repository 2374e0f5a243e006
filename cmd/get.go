package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "Fetch and print component manifests",
	Long: `Fetch each identifier, decode it and print its facets.

Identifiers with an http or https scheme are fetched over the network;
anything else is read from the content root.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range args {
		m, err := f.Get(cmd.Context(), id)
		if err != nil {
			printErr(id, fmt.Sprintf("%s: %v", failureReason(err), err))
			failed++
			continue
		}
		writeManifest(os.Stdout, m)
		printFacetSummary(m)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d manifest(s) could not be resolved", failed, len(args))
	}
	return nil
}

// printFacetSummary notes the standard facets and any facet that was
// dropped during parsing.
func printFacetSummary(m *manifest.Manifest) {
	if c, ok := m.Component(); ok && c.Name != "" {
		msg := c.Name
		if c.Version != "" {
			msg += " " + c.Version
		}
		printInfo("component", msg)
	}
	if p, ok := m.Program(); ok && p.Runner != "" {
		printInfo("program", fmt.Sprintf("%s runs %s", p.Runner, p.Resource))
	}
	for _, s := range m.Skipped {
		printWarn(s.Facet, fmt.Sprintf("skipped: %v", s))
	}
}
