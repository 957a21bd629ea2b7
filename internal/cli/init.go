package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

type initFlags struct {
	force  bool
	format string
	engine string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gramlint configuration file",
		Long: `Create a commented .gramlint.yml (or .gramlint.toml) in the current
directory. When run in a terminal without --engine, asks which grammar
engine to configure.

Examples:
  gramlint init                          Create .gramlint.yml
  gramlint init --format toml            Create .gramlint.toml instead
  gramlint init --engine languagetool    Preconfigure a LanguageTool server
  gramlint init --output ci.yml          Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("engine") && isTerminal(os.Stdin) {
				engine, err := promptEngine(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				flags.engine = engine
			}
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "file format: yaml or toml")
	cmd.Flags().StringVar(&flags.engine, "engine", config.EngineBuiltin, "grammar engine: builtin or languagetool")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: .gramlint.yml or .gramlint.toml)")

	return cmd
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// promptEngine asks whether to use a LanguageTool server. Anything but a
// yes keeps the built-in engine.
func promptEngine(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Use a LanguageTool server instead of the built-in engine? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return config.EngineLanguageTool, nil
	default:
		return config.EngineBuiltin, nil
	}
}

func runInit(flags *initFlags) error {
	logger := logging.Default()

	format := strings.ToLower(flags.format)
	if format != "yaml" && format != "toml" {
		return fmt.Errorf("invalid format %q: must be yaml or toml", flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".gramlint.yml"
		if format == "toml" {
			outputPath = ".gramlint.toml"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Format: format, Engine: flags.engine})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath, logging.FieldEngine, flags.engine)
	logger.Info("run 'gramlint categories' to see the effective category settings")

	return nil
}
