package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/render"
)

var askCmd = &cobra.Command{
	Use:   "ask FILE",
	Short: "Answer a question from a document",
	Long: `Answer a question from a document.

Examples:
  # Top three answers using the configured backend
  docqa ask article.html --question "When did she move to Canada?"

  # Offline keyword scorer, best answer only
  docqa ask notes.md -q "Where is the config file?" --top 1 --backend lexical`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	f := askCmd.Flags()
	f.StringP("question", "q", "", "question to answer (required)")
	f.IntP("top", "n", 0, "number of answers (default DEFAULT_TOP_N)")
	f.String("backend", "", "scorer backend: http, claude, ollama or lexical (default SCORER_BACKEND)")
	f.Bool("color", true, "highlight answers with ANSI colors")
	f.Bool("html", false, "print an HTML fragment instead of text")
	_ = askCmd.MarkFlagRequired("question")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := cmd.Flags()
	question, _ := f.GetString("question")
	n, _ := f.GetInt("top")
	if !f.Changed("top") {
		n = cfg.DefaultTopN
	}
	if backend, _ := f.GetString("backend"); backend != "" {
		cfg.ScorerBackend = qa.Backend(backend)
	}
	color, _ := f.GetBool("color")

	if err := cfg.ValidateScorer(); err != nil {
		return err
	}
	scorer, err := qa.Open(cfg.ScorerOptions(nil))
	if err != nil {
		return err
	}
	defer qa.Close(scorer)

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(scorer, log, cfg.SectionConfig(), cfg.ScorerConcurrency)
	answers, err := p.AnswerDocument(ctx, question, doc, n)
	if err != nil {
		if errors.Is(err, qa.ErrScoringUnavailable) {
			return fmt.Errorf("%w (backend %s)", err, cfg.ScorerBackend)
		}
		return err
	}

	if asHTML, _ := f.GetBool("html"); asHTML {
		fmt.Fprint(cmd.OutOrStdout(), render.HTML(answers))
		return nil
	}
	printAnswers(cmd.OutOrStdout(), answers, color)
	return nil
}
