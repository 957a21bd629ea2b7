//go:build cgo

package code_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gramlint/pkg/classify/code"
	"github.com/yaklabco/gramlint/pkg/token"
)

func TestBashGrammar(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		src    string
		opts   code.Options
		texts  []string
		opaque string
	}{
		{
			name:   "hash inside parameter expansion is not a comment",
			src:    "dir=${path#*/} # strip the leading directory\n",
			texts:  []string{"strip the leading directory"},
			opaque: "${path#*/}",
		},
		{
			name:   "hash inside a quoted string is not a comment",
			src:    "echo \"issue #12 is fixed\" # report the fix\n",
			texts:  []string{"report the fix"},
			opaque: "issue #12",
		},
		{
			name:  "single quotes take no escapes",
			src:   "msg='keep this \\n as written'\n",
			opts:  code.Options{Strings: true},
			texts: []string{"keep this \\n as written"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			texts, _, spans := classifyText(t, "bash", testCase.src, testCase.opts)
			assert.Equal(t, testCase.texts, texts)
			if testCase.opaque != "" {
				assert.False(t, spans.Inside(spanOf(testCase.src, testCase.opaque), token.Comment))
			}
		})
	}
}
