package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections FILE",
	Short: "List the sections extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

func init() {
	sectionsCmd.Flags().Bool("body", false, "print each section body")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	// Extraction needs no scorer.
	p := pipeline.New(qa.LexicalScorer{}, log, cfg.SectionConfig(), 1)
	sections, err := p.Sections(doc)
	if err != nil {
		return err
	}

	showBody, _ := cmd.Flags().GetBool("body")
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d sections\n", doc.Title, len(sections))
	for _, s := range sections {
		fmt.Fprintf(out, "%3d  %s%s (%d chars)\n", s.Index, strings.Repeat("  ", max(s.Level-1, 0)), s.Title, doctree.RuneLen(s.Body))
		if showBody {
			fmt.Fprintf(out, "%s\n\n", s.Body)
		}
	}
	return nil
}

func loadDocument(path string) (*doctree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.Parse(path, "", data)
}
