package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/gramlint/internal/ui/pretty"
	"github.com/yaklabco/gramlint/pkg/runner"
	"github.com/yaklabco/gramlint/pkg/source"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		total += r.writeFile(bw, file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

func (r *TextReporter) writeFile(w io.Writer, file runner.FileOutcome) int {
	path := relativePath(file.Path, r.opts.WorkingDir)

	if file.Error != nil {
		fmt.Fprintf(w, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return 0
	}
	if file.Result == nil || file.Result.FileResult == nil || len(file.Result.Diagnostics) == 0 {
		return 0
	}

	diagnostics := file.Result.Diagnostics
	if r.opts.GroupByFile {
		fmt.Fprintln(w, r.styles.FormatFileHeader(path, len(diagnostics)))
	}

	for i := range diagnostics {
		var line string
		if r.opts.ShowContext {
			line = sourceLine(file.Result.Snapshot, diagnostics[i].StartLine)
		}
		fmt.Fprint(w, r.styles.FormatDiagnostic(&diagnostics[i], r.opts.ShowContext, line))
	}

	if r.opts.GroupByFile {
		fmt.Fprintln(w)
	}
	return len(diagnostics)
}

func sourceLine(snapshot *source.Snapshot, line int) string {
	if snapshot == nil {
		return ""
	}
	return string(snapshot.LineContent(line))
}
