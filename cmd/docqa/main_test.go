package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docqa/internal/doctree"
)

const article = `# Jane Doe

Jane Doe is a painter.

## Contents

Early life, Career

## Early life

She was born in Lyon in 1971.

## Career

She moved to Canada in 1995.
`

func writeArticle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jane.md")
	require.NoError(t, os.WriteFile(path, []byte(article), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		for _, c := range rootCmd.Commands() {
			c.Flags().VisitAll(func(f *pflag.Flag) { _ = f.Value.Set(f.DefValue); f.Changed = false })
		}
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"ask", "sections"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestAskCommand_Flags(t *testing.T) {
	for _, name := range []string{"question", "top", "backend", "color", "html"} {
		require.NotNil(t, askCmd.Flags().Lookup(name), "ask command should have --%s flag", name)
	}
}

func TestSectionsCommand(t *testing.T) {
	out, err := execute(t, "sections", writeArticle(t))
	require.NoError(t, err)
	assert.Contains(t, out, "3 sections")
	assert.Contains(t, out, "Early life")
	assert.NotContains(t, out, "Contents")
}

func TestAskCommand_Lexical(t *testing.T) {
	out, err := execute(t, "ask", writeArticle(t), "-q", "Where was she born?", "--top", "1", "--backend", "lexical", "--color=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer: She was born in Lyon in 1971.")
	assert.Contains(t, out, "Score: 100.00%")
	assert.Contains(t, out, "## Early life")
	assert.Contains(t, out, "**She was born in Lyon in 1971.**")
}

func TestAskCommand_UnknownBackend(t *testing.T) {
	_, err := execute(t, "ask", writeArticle(t), "-q", "q", "--backend", "bert")
	assert.ErrorContains(t, err, "unknown SCORER_BACKEND")
}

func TestPrintAnswers(t *testing.T) {
	var buf bytes.Buffer
	printAnswers(&buf, []doctree.RenderedAnswer{{
		Title: "Career", Level: 2, Answer: "1995", ScorePercent: 91,
		Pre: "Moved in ", Highlight: "1995", Post: ".",
	}}, true)
	assert.Contains(t, buf.String(), "Moved in "+ansiBold+ansiReverse+"1995"+ansiReset+".")
	assert.Contains(t, buf.String(), "Score: 91.00%")

	buf.Reset()
	printAnswers(&buf, nil, false)
	assert.Equal(t, "No answers.\n", buf.String())
}

func TestAskCommand_HTML(t *testing.T) {
	out, err := execute(t, "ask", writeArticle(t), "-q", "Where was she born?", "--top", "1", "--backend", "lexical", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Early life</h2>")
	assert.Contains(t, out, "<mark")
}
