package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gramlint/pkg/analysis"
)

// jsonOutput is the top-level JSON document: the analysis report plus the
// tool that produced it.
type jsonOutput struct {
	Tool        string `json:"tool"`
	ToolVersion string `json:"toolVersion"`

	*analysis.Report
}

// JSONRenderer writes an analysis report as JSON.
type JSONRenderer struct {
	opts Options
}

// NewJSONRenderer creates a new JSON renderer.
func NewJSONRenderer(opts Options) *JSONRenderer {
	return &JSONRenderer{opts: opts}
}

// Render implements Renderer.
func (r *JSONRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	// Empty slices encode as [] so consumers can index unconditionally.
	if report.Diagnostics == nil {
		report.Diagnostics = []analysis.DiagnosticEntry{}
	}

	encoder := json.NewEncoder(bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	output := jsonOutput{Tool: toolName, ToolVersion: r.opts.ToolVersion, Report: report}
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
