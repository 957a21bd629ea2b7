package runner

import (
	"path/filepath"
	"strings"
)

// globSet matches slash-separated relative paths against glob patterns.
// Besides filepath.Match syntax it understands a leading "**/" (any
// depth), a trailing "/**" (everything below) and one "**" in the middle.
// A pattern without a slash also matches the base name.
type globSet []string

func newGlobSet(patterns []string) globSet {
	out := make(globSet, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p != "" {
			out = append(out, strings.TrimPrefix(p, "./"))
		}
	}
	return out
}

func (g globSet) empty() bool { return len(g) == 0 }

func (g globSet) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range g {
		if matchGlob(rel, p) {
			return true
		}
	}
	return false
}

func matchGlob(path, pattern string) bool {
	before, after, found := strings.Cut(pattern, "**")
	if !found {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if strings.Contains(pattern, "/") {
			return false
		}
		ok, _ := filepath.Match(pattern, baseName(path))
		return ok
	}

	prefix := strings.TrimSuffix(before, "/")
	suffix := strings.TrimPrefix(after, "/")

	if prefix != "" && path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return false
	}
	if suffix == "" {
		return true
	}

	// The suffix may match any run of components, so "**/vendor" also
	// matches the files below a vendor directory.
	rest := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
	parts := strings.Split(rest, "/")
	for i := range parts {
		for j := i + 1; j <= len(parts); j++ {
			if matchGlob(strings.Join(parts[i:j], "/"), suffix) {
				return true
			}
		}
	}
	return false
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
