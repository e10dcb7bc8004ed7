package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercheck/papercheck/internal/annotate"
	"github.com/papercheck/papercheck/internal/ingest"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/registry"
	"github.com/papercheck/papercheck/internal/track"
)

var (
	checkMode    string
	checkOut     string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Analyze a document locally and write the report",
	Long: `Check runs the citation analysis on a local file without a server:
- Parse the document into paragraphs
- Match citation tokens against the references section
- Report missing citations, unused references and (with an LLM provider
  configured) possibly irrelevant citations

Example:
  papercheck check paper.html
  papercheck check paper.txt --mode full --out report.html`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkMode, "mode", "quick", "analysis mode (full, quick, subjective)")
	checkCmd.Flags().StringVar(&checkOut, "out", "report.html", "output report path")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "overall analysis timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	mode := model.AnalysisMode(checkMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown analysis mode %q (supported: full, quick, subjective)", checkMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := ingest.Parse(filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	progress := func(processed, total int) {
		if verbose {
			fmt.Fprintf(os.Stderr, "progress: %d/%d\n", processed, total)
		}
	}

	findings, report, err := engine.Analyze(ctx, doc, mode, progress)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	tracked := track.New(logger).Locate(doc, findings)
	reg := registry.Build(tracked)
	annotated := annotate.NewTokenAnnotator(logger).Annotate(report, reg.All())

	if err := os.WriteFile(checkOut, []byte(annotated), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("✓ Analyzed %s (%d paragraphs)\n", doc.Filename, len(doc.Paragraphs))
	for t, n := range reg.Counts() {
		fmt.Printf("  %s: %d\n", t, n)
	}
	fmt.Printf("✓ Report written to %s\n", checkOut)
	return nil
}
