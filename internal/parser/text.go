package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
)

// TextParser handles plain text files. The whole file becomes one section
// titled after the file, with blank-line separated paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	paragraphs, err := splitParagraphs(r)
	if err != nil {
		return nil, err
	}

	title := baseTitle(filename)
	root := doctree.Elem("body", doctree.Heading(1, title))
	for _, para := range paragraphs {
		root.Children = append(root.Children, doctree.Paragraph(para))
	}
	return &doctree.Document{Title: title, Root: root}, nil
}

// splitParagraphs groups lines into paragraphs separated by blank lines.
// Each paragraph keeps a trailing newline so concatenated paragraphs stay
// readable.
func splitParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			current.WriteString("\n")
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
