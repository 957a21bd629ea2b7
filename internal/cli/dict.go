package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/dictionary"
	"github.com/yaklabco/gramlint/pkg/lint"
)

func newDictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the user dictionary",
		Long: `Manage the words that are never reported as spelling mistakes.

The dictionary lives in a file next to the project configuration by default
(.gramlint.dict). Set dictionary.backend to "redis" to share one across a team.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add WORD...",
		Short: "Add words to the dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDictionary(cmd, func(store dictionary.Store) error {
				if err := store.Add(commandContext(cmd), args...); err != nil {
					return fmt.Errorf("add words: %w", err)
				}
				for _, word := range args {
					logging.Default().Info("added", logging.FieldWord, word)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove WORD...",
		Aliases: []string{"rm"},
		Short:   "Remove words from the dictionary",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDictionary(cmd, func(store dictionary.Store) error {
				if err := store.Remove(commandContext(cmd), args...); err != nil {
					return fmt.Errorf("remove words: %w", err)
				}
				for _, word := range args {
					logging.Default().Info("removed", logging.FieldWord, word)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the dictionary, one word per line",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDictionary(cmd, func(store dictionary.Store) error {
				words, err := store.Words(commandContext(cmd))
				if err != nil {
					return fmt.Errorf("list words: %w", err)
				}
				for _, word := range words {
					fmt.Fprintln(cmd.OutOrStdout(), word)
				}
				return nil
			})
		},
	})

	return cmd
}

func withDictionary(cmd *cobra.Command, fn func(dictionary.Store) error) (err error) {
	loaded, workDir, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := lint.DictionaryOptions(loaded.Config, workDir)
	store, err := dictionary.Open(commandContext(cmd), opts)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close dictionary: %w", closeErr)
		}
	}()

	logging.Default().Debug("dictionary opened", logging.FieldBackend, opts.Backend, logging.FieldPath, opts.Path)
	return fn(store)
}
