package doctree

import "strings"

// Kind classifies a Node for sectioning purposes.
type Kind int

const (
	KindOther     Kind = iota // Container or unrecognized element
	KindHeading               // h1..h6 or an equivalent heading block
	KindParagraph             // Paragraph block
	KindText                  // Literal text leaf
)

// Document is the root of a parsed document.
type Document struct {
	Title string // Document title (from metadata or filename)
	Root  *Node
}

// Node is a read-only tree node in document order.
type Node struct {
	Kind     Kind
	Tag      string  // Source tag, e.g. "h2", "p", "div"
	Level    int     // Heading rank 1-6, 0 for non-headings
	Text     string  // Literal text, KindText only
	Children []*Node // Child nodes in document order
}

// TextContent concatenates the text of all descendant text leaves.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Kind == KindText {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// Elem builds a container node.
func Elem(tag string, children ...*Node) *Node {
	return &Node{Kind: KindOther, Tag: tag, Children: children}
}

// Heading builds a heading node of the given rank holding a single text leaf.
func Heading(level int, text string) *Node {
	return &Node{
		Kind:     KindHeading,
		Tag:      "h" + string(rune('0'+level)),
		Level:    level,
		Children: []*Node{TextNode(text)},
	}
}

// Paragraph builds a paragraph node holding a single text leaf.
func Paragraph(text string) *Node {
	return &Node{Kind: KindParagraph, Tag: "p", Children: []*Node{TextNode(text)}}
}

// TextNode builds a text leaf.
func TextNode(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Section is a titled span of body text bounded by consecutive headings.
type Section struct {
	Index int    `json:"index"` // Position among emitted sections, document order
	Title string `json:"title"`
	Level int    `json:"level"`
	Body  string `json:"body"`
}

// ScoredSection is a Section plus the scorer's answer span. Start and End are
// code point offsets into Body.
type ScoredSection struct {
	Section
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// RenderedAnswer is a lossless three-way split of a section body around its answer.
type RenderedAnswer struct {
	Title        string  `json:"title"`
	Level        int     `json:"level"`
	Answer       string  `json:"answer"`
	ScorePercent float64 `json:"score_percent"`
	Pre          string  `json:"pre"`
	Highlight    string  `json:"highlight"`
	Post         string  `json:"post"`
}
