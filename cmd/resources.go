package cmd

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var flagResourcesLocal bool

var resourcesCmd = &cobra.Command{
	Use:   "resources <id>",
	Short: "List the resources a component declares, as absolute URLs",
	Args:  cobra.ExactArgs(1),
	RunE:  runResources,
}

func init() {
	resourcesCmd.Flags().BoolVar(&flagResourcesLocal, "local", false, "Also show where each non-web resource lives under the content root")
	rootCmd.AddCommand(resourcesCmd)
}

func runResources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	m, err := f.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", failureReason(err), err)
	}
	res, err := manifest.Resources(m)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		printMiss(m.ID, "no resources declared")
		return nil
	}

	names := make([]string, 0, len(res))
	for n := range res {
		names = append(names, n)
	}
	sort.Strings(names)

	files := newFileTransport(cfg)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, n := range names {
		u := res[n]
		if flagResourcesLocal && !isWebURL(u) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", n, u, files.PathForID(u))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", n, u)
	}
	return tw.Flush()
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
