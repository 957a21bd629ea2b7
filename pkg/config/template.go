package config

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gramlint/pkg/typo"
)

// TemplateOptions controls the starter file written by "gramlint init".
type TemplateOptions struct {
	// Format is "yaml" or "toml".
	Format string

	// Engine preselects the engine kind.
	Engine string
}

// GenerateTemplate renders a commented configuration file.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	engine := opts.Engine
	if engine == "" {
		engine = EngineBuiltin
	}
	if engine != EngineBuiltin && engine != EngineLanguageTool {
		return nil, fmt.Errorf("unknown engine %q", engine)
	}

	switch strings.ToLower(opts.Format) {
	case "", "yaml", "yml":
		return []byte(yamlTemplate(engine)), nil
	case "toml":
		return []byte(tomlTemplate(engine)), nil
	default:
		return nil, fmt.Errorf("unknown template format %q", opts.Format)
	}
}

func yamlTemplate(engine string) string {
	var b strings.Builder

	b.WriteString("# gramlint configuration\n\n")
	b.WriteString("language: en-US\n")
	b.WriteString("flavor: gfm # or commonmark\n\n")
	b.WriteString("engine:\n")
	fmt.Fprintf(&b, "  kind: %s # builtin or languagetool\n", engine)
	b.WriteString("  url: http://localhost:8081\n")
	b.WriteString("  timeout: 30s\n")
	b.WriteString("  spelling: true\n\n")
	b.WriteString("cache:\n  enabled: true\n\n")
	b.WriteString("dictionary:\n  backend: file\n  path: .gramlint.dict\n\n")
	b.WriteString("code:\n  enabled: true\n  strings: false\n\n")
	b.WriteString("# Categories can be disabled or given their own severity.\ncategories:\n")
	for _, cat := range typo.Categories() {
		fmt.Fprintf(&b, "  %s: { enabled: true }\n", cat)
	}
	b.WriteString("\n# Categories that are expected inside a structure.\n")
	b.WriteString("suppressions:\n  heading: [CASING]\n\n")
	b.WriteString("ignore:\n  - vendor/**\n  - node_modules/**\n")
	return b.String()
}

func tomlTemplate(engine string) string {
	var b strings.Builder

	b.WriteString("# gramlint configuration\n\n")
	b.WriteString("language = \"en-US\"\n")
	b.WriteString("flavor = \"gfm\"\n")
	b.WriteString("ignore = [\"vendor/**\", \"node_modules/**\"]\n\n")
	b.WriteString("[engine]\n")
	fmt.Fprintf(&b, "kind = %q\n", engine)
	b.WriteString("url = \"http://localhost:8081\"\n")
	b.WriteString("timeout = \"30s\"\n")
	b.WriteString("spelling = true\n\n")
	b.WriteString("[cache]\nenabled = true\n\n")
	b.WriteString("[dictionary]\nbackend = \"file\"\npath = \".gramlint.dict\"\n\n")
	b.WriteString("[code]\nenabled = true\nstrings = false\n\n")
	b.WriteString("[suppressions]\nheading = [\"CASING\"]\n\n")
	for _, cat := range typo.Categories() {
		fmt.Fprintf(&b, "[categories.%s]\nenabled = true\n\n", cat)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
