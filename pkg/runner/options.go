// Package runner checks many files concurrently and aggregates the results.
package runner

import (
	"slices"

	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/langdetect"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are files or directories. Empty means the working directory.
	Paths []string

	// WorkingDir resolves relative Paths and anchors the glob patterns.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions are the lowercase extensions, with the leading dot, of
	// files a classifier is registered for. Empty means DefaultExtensions.
	Extensions []string

	// IncludeGlobs restrict discovery when set.
	IncludeGlobs []string

	// ExcludeGlobs skip files and whole directories. The config's ignore
	// list and --ignore end up here.
	ExcludeGlobs []string

	FollowSymlinks bool

	// Jobs caps concurrent files. 0 or negative means runtime.NumCPU().
	Jobs int

	Config *config.Config
}

// DefaultExtensions returns the Markdown and plain text extensions.
func DefaultExtensions() []string {
	exts := append(langdetect.Extensions(langdetect.Markdown), langdetect.Extensions(langdetect.Text)...)
	slices.Sort(exts)
	return slices.Compact(exts)
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
