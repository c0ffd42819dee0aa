package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dgallion1/docqa/internal/doctree"
)

// answerPolicy admits only the markup HTML emits.
var answerPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "p", "span", "strong", "mark", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^answer(-[a-z]+)?$`)).OnElements("div", "p", "span", "mark")
	return p
}()

// HTML renders answers as an HTML fragment: a score line, the section
// heading at its original rank, and the body with the answer in <mark>.
func HTML(answers []doctree.RenderedAnswer) string {
	var sb strings.Builder
	for _, a := range answers {
		level := min(max(a.Level, 1), 6)
		fmt.Fprintf(&sb, `<div class="answer">`+"\n")
		fmt.Fprintf(&sb, `<p class="answer-meta"><strong>Answer:</strong> <span>%s</span> <strong>Score:</strong> <span>%s %%</span></p>`+"\n",
			html.EscapeString(a.Answer), strconv.FormatFloat(a.ScorePercent, 'f', -1, 64))
		fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(a.Title), level)
		fmt.Fprintf(&sb, `<p class="answer-body"><span>%s</span><mark class="answer-span">%s</mark><span>%s</span></p>`+"\n",
			html.EscapeString(a.Pre), html.EscapeString(a.Highlight), html.EscapeString(a.Post))
		sb.WriteString("</div>\n")
	}
	return answerPolicy.Sanitize(sb.String())
}
