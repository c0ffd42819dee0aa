package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docqa/internal/doctree"
)

const (
	ansiBold    = "\x1b[1m"
	ansiReverse = "\x1b[7m"
	ansiReset   = "\x1b[0m"
)

// printAnswers writes each answer as a score line, the section title as a
// Markdown heading, and the section body with the answer span marked.
func printAnswers(w io.Writer, answers []doctree.RenderedAnswer, color bool) {
	if len(answers) == 0 {
		fmt.Fprintln(w, "No answers.")
		return
	}
	for i, a := range answers {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
		fmt.Fprintf(w, "Answer: %s\n", a.Answer)
		fmt.Fprintf(w, "Score: %.2f%%\n\n", a.ScorePercent)
		fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", max(a.Level, 1)), a.Title)
		fmt.Fprintf(w, "%s%s%s\n\n", a.Pre, mark(a.Highlight, color), a.Post)
	}
}

func mark(s string, color bool) string {
	if s == "" {
		return ""
	}
	if color {
		return ansiBold + ansiReverse + s + ansiReset
	}
	return "**" + s + "**"
}
