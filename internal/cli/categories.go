package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/filter"
	"github.com/yaklabco/gramlint/pkg/token"
	"github.com/yaklabco/gramlint/pkg/typo"
)

// categoryInfo is one entry of "gramlint categories".
type categoryInfo struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Severity string `yaml:"severity"`

	// SuppressedIn lists the structures the category is not reported in.
	SuppressedIn []string `yaml:"suppressed_in,omitempty"`
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List typo categories and their effective settings",
		Long: `List every typo category with whether it is enabled, the severity it is
reported with and the document structures it is suppressed in, after applying
the configuration files and environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			infos, err := describeCategories(loaded.Config)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(infos); err != nil {
				return fmt.Errorf("encode categories: %w", err)
			}
			return enc.Close()
		},
	}
}

func describeCategories(cfg *config.Config) ([]categoryInfo, error) {
	overrides, err := filter.ParseSuppressions(cfg.Suppressions)
	if err != nil {
		return nil, fmt.Errorf("suppressions: %w", err)
	}
	table := filter.DefaultSuppressions().Merge(overrides)

	infos := make([]categoryInfo, 0, len(typo.Categories()))
	for _, cat := range typo.Categories() {
		info := categoryInfo{
			Name:     string(cat),
			Enabled:  cfg.CategoryEnabled(cat),
			Severity: string(cfg.SeverityFor(cat)),
		}
		for _, structure := range token.Structures() {
			if table.Suppresses(structure, cat) {
				info.SuppressedIn = append(info.SuppressedIn, structure.String())
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
