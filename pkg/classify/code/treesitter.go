//go:build cgo

package code

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/yaklabco/gramlint/pkg/span"
)

func grammarFor(lang string) *sitter.Language {
	switch lang {
	case "bash":
		return bash.GetLanguage()
	case "go":
		return golang.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "kotlin":
		return kotlin.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	default:
		return nil
	}
}

//nolint:gochecknoglobals // node type tables
var (
	commentNodes = map[string]bool{
		"comment":           true,
		"line_comment":      true,
		"block_comment":     true,
		"multiline_comment": true,
	}
	stringNodes = map[string]bool{
		"interpreted_string_literal": true,
		"raw_string_literal":         true,
		"raw_string":                 true,
		"string_literal":             true,
		"string":                     true,
		"template_string":            true,
		"line_string_literal":        true,
	}
)

// locate finds comment and string nodes with a tree-sitter grammar. It
// returns false when no grammar exists for lang.
func locate(ctx context.Context, lang string, content []byte, syn Syntax) ([]piece, bool, error) {
	grammar := grammarFor(lang)
	if grammar == nil {
		return nil, false, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, fmt.Errorf("parse %s: %w", lang, err)
	}
	defer tree.Close()

	var pieces []piece
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		typ := n.Type()
		r := span.New(int(n.StartByte()), int(n.EndByte()))

		switch {
		case commentNodes[typ]:
			line := false
			for _, m := range syn.LineComments {
				if len(content) >= r.Start+len(m) && string(content[r.Start:r.Start+len(m)]) == m {
					line = true
					break
				}
			}
			pieces = append(pieces, piece{kind: pieceComment, r: r, line: line})
			return
		case stringNodes[typ]:
			pieces = append(pieces, piece{kind: pieceString, r: r})
			return
		}

		for i := range int(n.ChildCount()) {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	return pieces, true, nil
}
