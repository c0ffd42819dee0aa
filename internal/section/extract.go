package section

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docqa/internal/doctree"
)

// Config controls section extraction.
type Config struct {
	// SkipTitles are cleaned heading texts that never start a section, such as a
	// table of contents. They still close the preceding section.
	SkipTitles []string
}

// DefaultConfig returns the defaults for wiki-style articles.
func DefaultConfig() Config {
	return Config{SkipTitles: []string{"Contents"}}
}

// Extract walks the tree once in document order and returns one Section per
// heading that is followed by paragraph text before the next heading.
func Extract(root *doctree.Node, cfg Config) []doctree.Section {
	skip := make(map[string]bool, len(cfg.SkipTitles))
	for _, t := range cfg.SkipTitles {
		skip[t] = true
	}

	type pending struct {
		title string
		level int
		body  strings.Builder
	}

	var sections []doctree.Section
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		body := normalize(Clean(cur.body.String()))
		if body != "" {
			sections = append(sections, doctree.Section{
				Index: len(sections),
				Title: cur.title,
				Level: cur.level,
				Body:  body,
			})
		}
		cur = nil
	}

	for _, n := range Flatten(root) {
		switch n.Kind {
		case doctree.KindHeading:
			flush()
			title := normalize(Clean(n.TextContent()))
			if skip[title] {
				continue
			}
			cur = &pending{title: title, level: n.Level}
		case doctree.KindParagraph:
			if cur != nil {
				cur.body.WriteString(n.TextContent())
			}
		}
	}
	flush()

	return sections
}

// Flatten returns the heading and paragraph nodes of the tree in pre-order.
// Headings and paragraphs are leaves of the flattened sequence; their text is
// read with TextContent.
func Flatten(root *doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	var walk func(*doctree.Node)
	walk = func(n *doctree.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case doctree.KindHeading, doctree.KindParagraph:
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// normalize replaces invalid UTF-8, composes to NFC and trims surrounding
// whitespace so that code point offsets round-trip exactly.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(strings.ToValidUTF8(s, "\uFFFD")))
}
