// Package markdown renders assistant markdown into terminal text.
// The backend formats replies and drafted email bodies as markdown; the
// browser UI fed them through marked.parse, the terminal client walks the
// parsed AST and emits ANSI-styled plain text instead.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

const (
	ansiBold   = "\x1b[1m"
	ansiItalic = "\x1b[3m"
	ansiReset  = "\x1b[0m"
)

// Render converts markdown source into ANSI-styled terminal text.
func Render(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(src))

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				b.WriteString("`")
				b.Write(n.Literal)
				b.WriteString("`")
			}
		case *ast.CodeBlock:
			if entering {
				for _, line := range strings.Split(strings.TrimRight(string(n.Literal), "\n"), "\n") {
					b.WriteString("    " + line + "\n")
				}
			}
		case *ast.Heading:
			if entering {
				b.WriteString(ansiBold)
			} else {
				b.WriteString(ansiReset + "\n")
			}
		case *ast.Strong:
			if entering {
				b.WriteString(ansiBold)
			} else {
				b.WriteString(ansiReset)
			}
		case *ast.Emph:
			if entering {
				b.WriteString(ansiItalic)
			} else {
				b.WriteString(ansiReset)
			}
		case *ast.ListItem:
			if entering {
				b.WriteString("• ")
			}
		case *ast.Paragraph:
			if !entering {
				b.WriteString("\n")
			}
		case *ast.Link:
			if !entering {
				b.WriteString(" <" + string(n.Destination) + ">")
			}
		case *ast.HorizontalRule:
			if entering {
				b.WriteString("---\n")
			}
		}
		return ast.GoToNext
	})

	return strings.TrimRight(b.String(), "\n")
}

// Strip renders markdown and removes the ANSI escapes, leaving plain text.
// Used where the text goes back into an editable buffer.
func Strip(src string) string {
	rendered := Render(src)
	for _, code := range []string{ansiBold, ansiItalic, ansiReset} {
		rendered = strings.ReplaceAll(rendered, code, "")
	}
	return rendered
}
