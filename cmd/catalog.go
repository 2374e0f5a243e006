package cmd

import (
	"fmt"

	"github.com/kamusis/cindex-cli/internal/catalog"
	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or extend the component index",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every identifier in the component index",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Add components to the index",
	Long: `Fetch each identifier and append it to the component index.

A manifest is only indexed when it resolves and carries a fuchsia:component
facet. Identifiers already in the index are left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogAdd,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("cannot load component index: %w", err)
	}
	for _, id := range cat.IDs() {
		fmt.Println(id)
	}
	return nil
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	printSection("Indexing")
	var failed int
	for _, id := range args {
		m, err := f.Get(cmd.Context(), id)
		if err != nil {
			printErr(id, fmt.Sprintf("%s: %v", failureReason(err), err))
			failed++
			continue
		}
		if err := manifest.RequireFacet(m, manifest.ComponentFacet); err != nil {
			printErr(id, err.Error())
			failed++
			continue
		}
		added, err := catalog.Add(cfg.IndexPath, id)
		switch {
		case err != nil:
			printErr(id, err.Error())
			failed++
		case added:
			printOK(id, "indexed")
		default:
			printSkip(id, "already indexed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d identifier(s) not indexed", failed)
	}
	return nil
}
