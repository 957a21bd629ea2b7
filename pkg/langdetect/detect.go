// Package langdetect identifies the programming language of fenced code
// blocks and files so the matching comment classifier can be chosen.
package langdetect

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language ids understood by the code classifier.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
	Rust       = "rust"
	Java       = "java"
	C          = "c"
	CPP        = "cpp"
	Bash       = "bash"
	Ruby       = "ruby"
	YAML       = "yaml"
	TOML       = "toml"
	JSON       = "json"
	HTML       = "html"
	SQL        = "sql"
	Dockerfile = "dockerfile"
	Markdown   = "markdown"
	Text       = "text"
)

//nolint:gochecknoglobals // alias table
var aliases = map[string]string{
	"golang":     Go,
	"py":         Python,
	"python3":    Python,
	"js":         JavaScript,
	"jsx":        JavaScript,
	"node":       JavaScript,
	"ts":         TypeScript,
	"tsx":        TypeScript,
	"rs":         Rust,
	"sh":         Bash,
	"shell":      Bash,
	"zsh":        Bash,
	"console":    Bash,
	"c++":        CPP,
	"cc":         CPP,
	"h":          C,
	"rb":         Ruby,
	"yml":        YAML,
	"md":         Markdown,
	"plaintext":  Text,
	"txt":        Text,
	"plain text": Text,
}

// Normalize maps an info string or enry language name to a language id.
func Normalize(name string) string {
	lang := strings.ToLower(strings.TrimSpace(name))
	if fields := strings.Fields(lang); len(fields) > 0 {
		lang = strings.Trim(fields[0], "{}.")
	}
	if alias, ok := aliases[lang]; ok {
		return alias
	}
	if lang == "" {
		return Text
	}
	return lang
}

//nolint:gochecknoglobals // extensions enry reports as ambiguous
var proseExtensions = map[string]string{
	".md":       Markdown,
	".markdown": Markdown,
	".mdx":      Markdown,
	".txt":      Text,
	".text":     Text,
}

// FromPath identifies a file's language from its name and, when the name is
// ambiguous, its content.
func FromPath(path string, content []byte) string {
	name := filepath.Base(path)
	if lang, ok := proseExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return lang
	}

	byExt, safe := enry.GetLanguageByExtension(name)
	if safe && byExt != "" {
		return Normalize(byExt)
	}
	if lang, ok := enry.GetLanguageByFilename(name); ok && lang != "" {
		return Normalize(lang)
	}
	if len(content) > 0 {
		if lang := enry.GetLanguage(name, content); lang != "" {
			return Normalize(lang)
		}
	}
	if byExt != "" {
		return Normalize(byExt)
	}
	return Text
}

//nolint:gochecknoglobals // language ids to enry names
var enryNames = map[string]string{
	Go:         "Go",
	Python:     "Python",
	JavaScript: "JavaScript",
	TypeScript: "TypeScript",
	Rust:       "Rust",
	Java:       "Java",
	C:          "C",
	CPP:        "C++",
	Bash:       "Shell",
	Ruby:       "Ruby",
	YAML:       "YAML",
	TOML:       "TOML",
	JSON:       "JSON",
	HTML:       "HTML",
	SQL:        "SQL",
	Dockerfile: "Dockerfile",
	"c#":       "C#",
	"kotlin":   "Kotlin",
	"swift":    "Swift",
	"scala":    "Scala",
	"perl":     "Perl",
	"r":        "R",
	"lua":      "Lua",
	"makefile": "Makefile",
}

// Extensions returns the file extensions of a language id, with leading
// dots. Prose languages use gramlint's own list; code languages use enry's.
func Extensions(lang string) []string {
	lang = Normalize(lang)

	var out []string
	if lang == Markdown || lang == Text {
		for ext, l := range proseExtensions {
			if l == lang {
				out = append(out, ext)
			}
		}
		sort.Strings(out)
		return out
	}

	name, ok := enryNames[lang]
	if !ok {
		return nil
	}
	return enry.GetLanguageExtensions(name)
}

// Detect returns the language of a code snippet, or Text if unsure.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return Normalize(lang)
	}

	for _, p := range patterns {
		if p.match(content) {
			return p.lang
		}
	}

	candidates := []string{
		"Go", "Python", "Shell", "JavaScript", "TypeScript",
		"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
		"YAML", "HTML", "Dockerfile",
	}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return Normalize(lang)
	}

	return Text
}

type pattern struct {
	lang  string
	match func(content []byte) bool
}

// Checked in order; the first match wins.
//
//nolint:gochecknoglobals // detection table
var patterns = []pattern{
	{Go, func(c []byte) bool { return bytes.HasPrefix(bytes.TrimSpace(c), []byte("package ")) }},
	{Python, func(c []byte) bool {
		s := string(c)
		return (strings.Contains(s, "def ") && strings.Contains(s, "):")) ||
			strings.Contains(s, "__name__") ||
			(strings.HasPrefix(strings.TrimSpace(s), "import ") && !strings.Contains(s, "import ("))
	}},
	{HTML, func(c []byte) bool {
		lower := bytes.ToLower(c)
		return bytes.Contains(lower, []byte("<!doctype html")) || bytes.Contains(lower, []byte("<html"))
	}},
	{JSON, func(c []byte) bool {
		t := bytes.TrimSpace(c)
		return (bytes.HasPrefix(t, []byte("{")) || bytes.HasPrefix(t, []byte("["))) && bytes.Contains(t, []byte(`"`))
	}},
	{Dockerfile, func(c []byte) bool {
		return bytes.HasPrefix(bytes.TrimSpace(c), []byte("FROM ")) ||
			(bytes.Contains(c, []byte("WORKDIR ")) && bytes.Contains(c, []byte("COPY ")))
	}},
	{SQL, func(c []byte) bool {
		upper := strings.ToUpper(strings.TrimSpace(string(c)))
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
	{Rust, func(c []byte) bool {
		s := string(c)
		return strings.Contains(s, "fn main()") || strings.Contains(s, "println!") || strings.Contains(s, "let mut ")
	}},
	{JavaScript, func(c []byte) bool {
		s := string(c)
		return strings.Contains(s, "=>") || strings.Contains(s, "console.log") || strings.Contains(s, "const ")
	}},
	{YAML, func(c []byte) bool {
		keys := 0
		for _, line := range bytes.Split(c, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if bytes.HasPrefix(line, []byte("- ")) ||
				(bytes.Contains(line, []byte(": ")) && !bytes.ContainsAny(line, "({") && !bytes.HasPrefix(line, []byte(`"`))) {
				keys++
			}
		}
		return keys >= 2
	}},
}
