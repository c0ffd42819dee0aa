package qa

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const SpanPrompt = `You are an extractive question answering system. Read the passage and find the shortest span of the passage that answers the question.

Rules:
- Copy the answer VERBATIM from the passage. Do not paraphrase, summarize, or fix spelling.
- If the passage does not answer the question, return an empty answer.
- "confidence" is your probability (0.0 to 1.0) that the span answers the question.

Respond with ONLY a JSON object of the form {"answer": "<span>", "confidence": <number>}.`

// BuildSpanPrompt creates the full prompt for one question/passage pair.
func BuildSpanPrompt(question, passage string) string {
	var sb strings.Builder
	sb.WriteString(SpanPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Question: %q\n", question))
	sb.WriteString("---\n")
	sb.WriteString(passage)
	return sb.String()
}

type spanReply struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// parseSpanReply decodes a model reply and anchors the quoted span in passage.
func parseSpanReply(raw, passage string) (Answer, error) {
	text := stripCodeBlock(raw)
	var reply spanReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Answer{}, fmt.Errorf("parse span json: %w (raw: %s)", err, truncate(text, 200))
	}
	conf := reply.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	ans := Locate(passage, reply.Answer, conf)
	if ans.Text == "" {
		ans.Score = 0
	}
	return ans, nil
}
