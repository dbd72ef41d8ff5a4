package extract

import (
	"context"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure Markdown implements the interface.
var _ driven.FormatExtractor = (*Markdown)(nil)

// Markdown handles Markdown files. Formatting syntax is stripped by walking
// the parsed AST and keeping only the text content, so index terms never
// include markup characters.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a new Markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Extensions returns the file extensions this extractor handles.
func (e *Markdown) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract returns the document's text content without markup.
func (e *Markdown) Extract(_ context.Context, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	doc := e.md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate block-level nodes so words never run together.
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.URL(source))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(b.String()), nil
}
