package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gramlint/internal/configloader"
	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/engine/cache"
	"github.com/yaklabco/gramlint/pkg/lint"
	"github.com/yaklabco/gramlint/pkg/metrics"
	"github.com/yaklabco/gramlint/pkg/reporter"
	"github.com/yaklabco/gramlint/pkg/runner"
)

// ErrIssuesFound is returned when a check reports issues that fail the run.
var ErrIssuesFound = errors.New("issues found")

type checkFlags struct {
	format            string
	engine            string
	language          string
	ignore            []string
	disableRules      []string
	disableCategories []string
	compact           bool
	watch             bool
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	cfg := &config.Config{}
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check files for spelling and grammar typos",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, cfg, flags, info)
		},
	}

	addCheckFlags(cmd, cfg, flags)

	return cmd
}

const checkLongDescription = `Check prose for spelling and grammar typos.

By default, checks Markdown and text files in the current directory and its
subdirectories, plus comments in source files when code checking is enabled.
Specify paths to check specific files or directories.

Examples:
  gramlint check                          # Check current directory
  gramlint check docs/ README.md          # Check some paths
  gramlint check --fix                    # Apply the first suggestion of each typo
  gramlint check --fix --dry-run          # Show the fixes as a diff
  gramlint check --format sarif           # Output SARIF for code scanning
  gramlint check --engine languagetool    # Use a LanguageTool server
  gramlint check --watch                  # Re-check when the config changes`

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().BoolVar(&cfg.Fix, "fix", false, "apply the first suggestion of each typo")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "show fixes without applying them")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, sarif, diff, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "grammar engine: builtin, languagetool")
	cmd.Flags().StringVar(&flags.language, "language", "", "prose language, e.g. en-US")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.disableRules, "disable-rule", nil, "engine rule IDs to disable")
	cmd.Flags().StringSliceVar(&flags.disableCategories, "disable-category", nil, "typo categories to disable")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when fixing")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&cfg.NoContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON and SARIF output")
	cmd.Flags().StringVar(&cfg.MetricsOut, "metrics-out", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "re-check whenever the configuration changes")
}

// cliConfig copies the flags that were set into cfg, the top layer of the
// configuration.
func cliConfig(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) *config.Config {
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine.Kind = flags.engine
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = flags.language
	}
	cfg.Ignore = flags.ignore
	cfg.DisabledRules = flags.disableRules
	cfg.DisabledCategories = flags.disableCategories
	return cfg
}

func runCheck(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *checkFlags, info BuildInfo) error {
	ctx := commandContext(cmd)
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliConfig(cmd, cliCfg, flags),
	}

	loadResult, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldPaths, loadResult.LoadedFrom)
	}

	session := &checkSession{
		cmd:     cmd,
		paths:   args,
		workDir: workDir,
		flags:   flags,
		info:    info,
		logger:  logger,
	}
	defer session.close()

	if err := session.rebuild(ctx, loadResult.Config); err != nil {
		return err
	}

	if !flags.watch {
		return session.check(ctx)
	}
	return session.watch(ctx, loadOpts)
}

// checkSession owns the engine for the current configuration and the result
// cache shared by every engine it builds. Watch mode rebuilds the engine
// between passes when the configuration changes.
type checkSession struct {
	cmd     *cobra.Command
	paths   []string
	workDir string
	flags   *checkFlags
	info    BuildInfo
	logger  *log.Logger

	mu     sync.Mutex
	cfg    *config.Config
	engine *lint.Engine

	cache       *cache.DB
	cacheCfg    config.CacheConfig
	cacheOpened bool
}

// rebuild sets up an engine for cfg and swaps it in. On error the previous
// engine stays active. Callers must not run a check concurrently, since the
// previous engine is closed here.
func (s *checkSession) rebuild(ctx context.Context, cfg *config.Config) error {
	if _, err := reporter.FormatFromConfig(cfg.Format); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsOut != "" {
		collector = metrics.New(nil)
	}

	eng, err := lint.Setup(ctx, cfg, lint.SetupOptions{
		Logger:     s.logger,
		Metrics:    collector,
		WorkingDir: s.workDir,
		Cache:      s.sharedCache(cfg),
	})
	if err != nil {
		return fmt.Errorf("set up engine: %w", err)
	}

	s.mu.Lock()
	previous := s.engine
	s.cfg, s.engine = cfg, eng
	s.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			s.logger.Warn("close engine", logging.FieldError, err)
		}
	}

	s.logger.Debug("engine ready",
		logging.FieldEngine, cfg.Engine.Kind,
		logging.FieldLanguage, cfg.Language,
		logging.FieldFix, cfg.Fix,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs)
	return nil
}

// sharedCache opens the result cache the first time a configuration enables
// it. Badger locks its directory, so the database stays open for the whole
// session and later cache settings only take effect on restart.
func (s *checkSession) sharedCache(cfg *config.Config) *cache.DB {
	if !cfg.Cache.IsEnabled() {
		return nil
	}
	if s.cacheOpened {
		if cacheSettingsChanged(s.cacheCfg, cfg.Cache) {
			s.logger.Warn("cache settings changed; restart to apply them")
		}
		return s.cache
	}

	s.cacheOpened = true
	s.cacheCfg = cfg.Cache
	db, err := lint.OpenCache(cfg.Cache, s.logger)
	if err != nil {
		s.logger.Warn("result cache disabled", logging.FieldError, err)
		return nil
	}
	s.cache = db
	return db
}

func cacheSettingsChanged(before, after config.CacheConfig) bool {
	return before.Path != after.Path || before.InMemory != after.InMemory || before.TTL != after.TTL
}

func (s *checkSession) current() (*config.Config, *lint.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, s.engine
}

func (s *checkSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.logger.Warn("close engine", logging.FieldError, err)
		}
		s.engine = nil
	}
	if s.cache != nil {
		hits, misses := s.cache.Stats()
		s.logger.Debug("result cache", logging.FieldCacheHits, hits, logging.FieldCacheMisses, misses)
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("close result cache", logging.FieldError, err)
		}
		s.cache = nil
	}
}

// check runs one pass and reports it. It returns an *IssuesError when the
// result fails the run.
func (s *checkSession) check(ctx context.Context) error {
	cfg, eng := s.current()

	result, err := runner.New(lint.NewPipeline(eng)).Run(ctx, runner.Options{
		Paths:        s.paths,
		WorkingDir:   s.workDir,
		Extensions:   eng.Classifiers.Extensions(),
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Config:       cfg,
	})
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}

	s.logger.Debug("check finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldFilesModified, result.Stats.FilesModified,
		logging.FieldTyposTotal, result.Stats.DiagnosticsTotal,
		logging.FieldTyposSuppressed, result.Stats.TyposSuppressed)

	if err := s.report(ctx, cfg, result); err != nil {
		return err
	}

	if cfg.MetricsOut != "" && eng.Metrics != nil {
		if err := eng.Metrics.WriteTextfile(cfg.MetricsOut); err != nil {
			return err
		}
	}

	if code := ExitCodeFromResult(result, cfg.Strict); code != ExitSuccess {
		return &IssuesError{Code: code}
	}
	return nil
}

func (s *checkSession) report(ctx context.Context, cfg *config.Config, result *runner.Result) error {
	colorMode, err := s.cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := reporter.FormatFromConfig(cfg.Format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	// A dry run without an explicit format shows the diff.
	if cfg.DryRun && !s.cmd.Flags().Changed("format") && format == reporter.FormatText {
		format = reporter.FormatDiff
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      s.cmd.OutOrStdout(),
		ErrorWriter: s.cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode,
		ShowContext: !cfg.NoContext,
		ShowSummary: true,
		GroupByFile: true,
		Compact:     s.flags.compact,
		WorkingDir:  s.workDir,
		ToolVersion: s.info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}

// watch checks once, then again after every configuration change, until
// interrupted. Engines are rebuilt between passes, never during one.
func (s *checkSession) watch(ctx context.Context, loadOpts configloader.LoadOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _ := s.current()
	holder := config.NewHolder(cfg)
	changes := make(chan *config.Config, 1)

	unsubscribe := holder.Subscribe(func(_, current *config.Config) {
		// Keep only the newest configuration.
		for {
			select {
			case changes <- current:
				return
			default:
			}
			select {
			case <-changes:
			default:
			}
		}
	})
	defer unsubscribe()

	watcher, err := configloader.NewWatcher(ctx, configloader.WatchOptions{Load: loadOpts, Logger: s.logger}, holder)
	if err != nil {
		return fmt.Errorf("watch configuration: %w", err)
	}
	go func() {
		if err := watcher.Run(ctx); err != nil {
			s.logger.Error("config watcher stopped", logging.FieldError, err)
		}
	}()

	s.logger.Info("watching for configuration changes", logging.FieldPaths, watcher.Dirs())

	for {
		if err := s.check(ctx); err != nil && !errors.Is(err, ErrIssuesFound) {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("check failed", logging.FieldError, err)
		}

		for rebuilt := false; !rebuilt; {
			select {
			case <-ctx.Done():
				return nil
			case next := <-changes:
				if err := s.rebuild(ctx, next); err != nil {
					s.logger.Error("keeping previous configuration", logging.FieldError, err)
					continue
				}
				rebuilt = true
			}
		}
	}
}
