package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kamusis/cindex-cli/internal/config"
	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, the component index and every indexed manifest",
	Long: `Check that cindex is configured correctly and that every identifier in
the component index resolves to a parseable manifest.

Queries silently leave out entries that fail to resolve; doctor reports
why each one failed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	allOK := true
	failD := func(name, format string, args ...any) {
		printErr(name, fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("cindex doctor")
	fmt.Println()

	fmt.Println("[ cindex.yaml ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		printSkip("", fmt.Sprintf("%s not found, using defaults", cfgPath))
	}
	cfg, err := loadConfig()
	if err != nil {
		failD("", "%v", err)
		fmt.Println()
		return summarize(false)
	}
	printOK("", fmt.Sprintf("index_path:   %s", cfg.IndexPath))
	printOK("", fmt.Sprintf("content_root: %s", cfg.ContentRoot))
	if tracer.Enabled() {
		printInfo("", fmt.Sprintf("tracing enabled (%s exporter)", cfg.Tracing.Exporter))
	}
	fmt.Println()

	fmt.Println("[ Content root ]")
	if info, err := os.Stat(cfg.ContentRoot); err != nil {
		printWarn("", fmt.Sprintf("%s is not readable: %v", cfg.ContentRoot, err))
	} else if !info.IsDir() {
		failD("", "%s is not a directory", cfg.ContentRoot)
	} else {
		printOK("", cfg.ContentRoot)
	}
	fmt.Println()

	fmt.Println("[ Component index ]")
	r, err := newResolver(cfg)
	if err != nil {
		failD("", "%v", err)
		fmt.Println()
		return summarize(false)
	}
	cat := r.Catalog()
	printOK("", fmt.Sprintf("%d component(s) indexed", cat.Len()))
	fmt.Println()

	fmt.Println("[ Manifests ]")
	var bad int
	for _, id := range cat.IDs() {
		m, err := r.GetManifest(cmd.Context(), id)
		if err != nil {
			failD(id, "%s: %v", failureReason(err), err)
			bad++
			continue
		}
		switch {
		case manifest.RequireFacet(m, manifest.ComponentFacet) != nil:
			printWarn(id, fmt.Sprintf("no %s facet", manifest.ComponentFacet))
		case len(m.Skipped) > 0:
			printWarn(id, fmt.Sprintf("%d facet(s) skipped, first: %v", len(m.Skipped), m.Skipped[0]))
		default:
			printOK(id, fmt.Sprintf("%d facet(s)", len(m.Facets)))
		}
	}
	if cat.Len() > 0 && bad == 0 {
		fmt.Println("  All indexed manifests resolve.")
	}
	fmt.Println()

	return summarize(allOK)
}

func summarize(allOK bool) error {
	fmt.Println("===================")
	if !allOK {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Println("✓  All checks passed.")
	return nil
}
