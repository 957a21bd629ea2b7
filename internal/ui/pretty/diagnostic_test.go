package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/internal/ui/pretty"
	"github.com/yaklabco/gramlint/pkg/config"
	"github.com/yaklabco/gramlint/pkg/lint"
	"github.com/yaklabco/gramlint/pkg/typo"
)

func TestFormatDiagnostic(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	diag := &lint.Diagnostic{
		RuleID:      "EN_A_VS_AN",
		Category:    typo.Grammar,
		Message:     "Use \"a\" instead of \"an\".",
		Severity:    config.SeverityError,
		FilePath:    "docs/intro.md",
		StartLine:   10,
		StartColumn: 9,
		EndLine:     10,
		EndColumn:   11,
		Suggestions: []string{"a"},
	}

	out := styles.FormatDiagnostic(diag, false, "")
	assert.Contains(t, out, "docs/intro.md:10:9")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "Use \"a\" instead of \"an\".")
	assert.Contains(t, out, "(EN_A_VS_AN, GRAMMAR)")
	assert.Contains(t, out, "Suggestion: a")
	assert.NotContains(t, out, "^")
}

func TestFormatDiagnostic_Caret(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	testCases := []struct {
		name       string
		line       string
		start, end int
		wantCaret  string
	}{
		{
			name:      "ascii",
			line:      "This is an test.",
			start:     9,
			end:       11,
			wantCaret: "        " + strings.Repeat(" ", 8) + "^^",
		},
		{
			// "日本 " is 7 bytes but 5 cells wide.
			name:      "wide runes before the typo",
			line:      "日本 teh",
			start:     8,
			end:       11,
			wantCaret: "        " + strings.Repeat(" ", 5) + "^^^",
		},
		{
			// "é" is 2 bytes but 1 cell.
			name:      "accented typo",
			line:      "a cafée here",
			start:     3,
			end:       9,
			wantCaret: "        " + "  " + "^^^^^",
		},
		{
			name:      "multi-line typo marks one cell",
			line:      "starts here",
			start:     8,
			end:       0,
			wantCaret: "        " + strings.Repeat(" ", 7) + "^",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			endLine := 1
			if testCase.end == 0 {
				endLine = 2
			}
			diag := &lint.Diagnostic{
				RuleID:      "R",
				Severity:    config.SeverityWarning,
				FilePath:    "f.md",
				StartLine:   1,
				StartColumn: testCase.start,
				EndLine:     endLine,
				EndColumn:   testCase.end,
			}

			lines := strings.Split(strings.TrimRight(styles.FormatDiagnostic(diag, true, testCase.line), "\n"), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, "        "+testCase.line, lines[1])
			assert.Equal(t, testCase.wantCaret, lines[2])
		})
	}
}

func TestFormatDiagnostic_LimitsSuggestions(t *testing.T) {
	t.Parallel()

	diag := &lint.Diagnostic{
		RuleID:      "MORFOLOGIK_RULE_EN_US",
		Severity:    config.SeverityWarning,
		Suggestions: []string{"the", "tea", "ten", "tech"},
	}
	out := pretty.NewStyles(false).FormatDiagnostic(diag, false, "")
	assert.Contains(t, out, "Suggestion: the, tea, ten\n")
}

func TestFormatSeverity(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "error", styles.FormatSeverity(config.SeverityError))
	assert.Equal(t, "warning", styles.FormatSeverity(config.SeverityWarning))
	assert.Equal(t, "info", styles.FormatSeverity(config.SeverityInfo))
	assert.Equal(t, "custom", styles.FormatSeverity("custom"))
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "a.md", styles.FormatFileHeader("a.md", 0))
	assert.Equal(t, "a.md (1 issue)", styles.FormatFileHeader("a.md", 1))
	assert.Equal(t, "a.md (4 issues)", styles.FormatFileHeader("a.md", 4))
}
