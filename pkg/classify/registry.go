package classify

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yaklabco/gramlint/pkg/langdetect"
)

// Registry selects a classifier for a file.
type Registry struct {
	mu       sync.RWMutex
	byLang   map[string]Classifier
	byExt    map[string]string
	fallback Classifier
}

// NewRegistry creates a registry that uses fallback for unknown languages.
// A nil fallback means PlainText.
func NewRegistry(fallback Classifier) *Registry {
	if fallback == nil {
		fallback = PlainText{}
	}
	return &Registry{
		byLang:   make(map[string]Classifier),
		byExt:    make(map[string]string),
		fallback: fallback,
	}
}

// Register binds a language id and file extensions to a classifier.
// Extensions include the leading dot.
func (r *Registry) Register(lang string, c Classifier, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLang[lang] = c
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = lang
	}
}

// Lookup returns the classifier for a language id.
func (r *Registry) Lookup(lang string) (Classifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byLang[langdetect.Normalize(lang)]
	return c, ok
}

// Language resolves the language id of path, consulting registered
// extensions before content-based detection.
func (r *Registry) Language(path string, content []byte) string {
	r.mu.RLock()
	lang, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	r.mu.RUnlock()
	if ok {
		return lang
	}
	return langdetect.FromPath(path, content)
}

// ForPath returns the classifier for a file. Unknown languages get the
// fallback classifier.
func (r *Registry) ForPath(path string, content []byte) Classifier {
	if c, ok := r.Lookup(r.Language(path, content)); ok {
		return c
	}
	return r.fallback
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Languages returns the registered language ids, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byLang))
	for lang := range r.byLang {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
