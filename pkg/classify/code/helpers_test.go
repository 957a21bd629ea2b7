package code_test

import (
	"strings"

	"github.com/yaklabco/gramlint/pkg/span"
)

func spanOf(src, needle string) span.Range {
	i := strings.Index(src, needle)
	return span.New(i, i+len(needle))
}
