package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kamusis/cindex-cli/internal/catalog"
	"github.com/kamusis/cindex-cli/internal/config"
	"github.com/spf13/cobra"
)

var flagInitForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file, dotenv template, content root and an empty index",
	Long: `Set up ~/.cindex/ for first use.

Existing files are left alone; pass --force to rewrite cindex.yaml with the
defaults. The component index is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing cindex.yaml with the defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath := flagConfig
	if cfgPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}

	printSection("cindex init")
	_, statErr := os.Stat(cfgPath)
	switch {
	case statErr == nil && !flagInitForce:
		printSkip("", fmt.Sprintf("config exists: %s", cfgPath))
	case statErr == nil || errors.Is(statErr, fs.ErrNotExist):
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.SaveFile(cfgPath, cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("config written: %s", cfgPath))
	default:
		return fmt.Errorf("cannot stat config %s: %w", cfgPath, statErr)
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if p, err := config.DotEnvPath(); err == nil {
		printOK("", fmt.Sprintf("dotenv ready: %s", p))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ContentRoot, 0o755); err != nil {
		return fmt.Errorf("cannot create content root %s: %w", cfg.ContentRoot, err)
	}
	printOK("", fmt.Sprintf("content root ready: %s", cfg.ContentRoot))

	created, err := catalog.Init(cfg.IndexPath)
	if err != nil {
		return err
	}
	if created {
		printOK("", fmt.Sprintf("empty component index: %s", cfg.IndexPath))
	} else {
		printSkip("", fmt.Sprintf("component index exists: %s", cfg.IndexPath))
	}
	return nil
}
