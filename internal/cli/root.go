// Package cli provides the Cobra command structure for gramlint.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gramlint/internal/configloader"
	"github.com/yaklabco/gramlint/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gramlint command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gramlint",
		Short: "A spelling and grammar checker for docs and code comments",
		Long: `gramlint finds spelling and grammar typos in Markdown, plain text and
the comments of source files.

It separates prose from markup and code before checking, so links, inline
code and URLs never produce false positives, and maps every typo back to its
exact place in the file. Typos can be fixed automatically, with dry-run diffs
and optional backups.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newDictCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}

// loadConfig resolves the configuration for commands other than check,
// which have no flags of their own in it.
func loadConfig(cmd *cobra.Command) (*configloader.LoadResult, string, error) {
	ctx := commandContext(cmd)

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
	})
	if err != nil {
		return nil, "", fmt.Errorf("load configuration: %w", err)
	}
	for _, warning := range result.Warnings {
		logging.Default().Warn(warning)
	}
	return result, workDir, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
