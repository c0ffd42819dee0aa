package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Every element is kept so paragraphs stay in
// document order at any nesting depth.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{Title: baseTitle(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	start := root
	if body := findBody(root); body != nil {
		start = body
	}
	doc.Root = convert(start)
	if doc.Root == nil {
		doc.Root = doctree.Elem("body")
	}
	return doc, nil
}

// convert maps an html.Node subtree onto doctree nodes.
func convert(n *html.Node) *doctree.Node {
	switch n.Type {
	case html.TextNode:
		return doctree.TextNode(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return nil
		}
	case html.DocumentNode:
	default:
		return nil
	}

	out := &doctree.Node{Kind: doctree.KindOther, Tag: n.Data}
	if level := headingLevel(n.Data); level > 0 {
		out.Kind = doctree.KindHeading
		out.Level = level
	} else if n.Data == "p" {
		out.Kind = doctree.KindParagraph
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
