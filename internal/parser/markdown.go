package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	return &doctree.Document{
		Title: baseTitle(filename),
		Root:  convertMarkdown(root, src),
	}, nil
}

// convertMarkdown maps the block structure of a goldmark AST. Headings and
// paragraphs become leaves carrying their inline text; other blocks become
// containers so nested paragraphs keep their order.
func convertMarkdown(n ast.Node, src []byte) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return doctree.Heading(node.Level, inlineText(node, src))
	case *ast.Paragraph:
		return doctree.Paragraph(inlineText(node, src))
	}

	out := doctree.Elem(n.Kind().String())
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		// Code blocks and HTML blocks keep their raw lines as text.
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		if buf.Len() > 0 {
			out.Children = append(out.Children, doctree.TextNode(buf.String()))
		}
		return out
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeInline {
			out.Children = append(out.Children, doctree.TextNode(inlineText(c, src)))
			continue
		}
		out.Children = append(out.Children, convertMarkdown(c, src))
	}
	return out
}

// inlineText gets the text of the inline children of a node.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.String:
			buf.Write(t.Value)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
