package reporter

import (
	"context"

	"github.com/yaklabco/gramlint/pkg/analysis"
)

// Renderer formats an analysis.Report for output.
// Renderers are stateless and only handle presentation logic.
type Renderer interface {
	Render(ctx context.Context, report *analysis.Report) error
}
