package checks

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError is the first problem tree-sitter found in a snippet.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("SyntaxError (line %d): %s", e.Line, e.Message)
}

// maxScanDepth guards against pathological nesting.
const maxScanDepth = 1000

func grammarFor(lang Language) *sitter.Language {
	switch lang {
	case Python:
		return python.GetLanguage()
	case Java:
		return java.GetLanguage()
	case CPP:
		return cpp.GetLanguage()
	default:
		return nil
	}
}

// scanSyntax parses code and returns the first syntax error, or nil when the
// parse tree is clean.
func scanSyntax(ctx context.Context, lang Language, code string) (*SyntaxError, error) {
	grammar := grammarFor(lang)
	if grammar == nil {
		return nil, fmt.Errorf("no grammar for %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	if found := firstErrorNode(root, src, 0); found != nil {
		return found, nil
	}
	// HasError was set but no ERROR/MISSING node was reachable.
	return &SyntaxError{Line: int(root.StartPoint().Row) + 1, Message: "invalid syntax"}, nil
}

func firstErrorNode(node *sitter.Node, src []byte, depth int) *SyntaxError {
	if node == nil || depth > maxScanDepth {
		return nil
	}
	if node.IsMissing() {
		p := node.StartPoint()
		return &SyntaxError{
			Line:    int(p.Row) + 1,
			Column:  int(p.Column),
			Message: fmt.Sprintf("missing %q", node.Type()),
		}
	}
	if node.IsError() {
		// Prefer a more specific MISSING child when there is one.
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil && child.IsMissing() {
				return firstErrorNode(child, src, depth+1)
			}
		}
		p := node.StartPoint()
		return &SyntaxError{
			Line:    int(p.Row) + 1,
			Column:  int(p.Column),
			Message: unexpectedMessage(node, src),
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i), src, depth+1); found != nil {
			return found
		}
	}
	return nil
}

func unexpectedMessage(node *sitter.Node, src []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if end > uint32(len(src)) {
		end = uint32(len(src))
	}
	if start >= end {
		return "invalid syntax"
	}
	text := strings.TrimSpace(string(src[start:end]))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	if text == "" {
		return "invalid syntax"
	}
	return fmt.Sprintf("invalid syntax near %q", text)
}
