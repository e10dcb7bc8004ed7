package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercheck/papercheck/internal/client"
	"github.com/papercheck/papercheck/internal/model"
)

var (
	submitServer string
	submitMode   string
	submitOut    string
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Upload a document to a running server and wait for the result",
	Long: `Submit uploads a document to a PaperCheck server, starts an analysis
task and polls its progress until it finishes.

Example:
  papercheck submit paper.html
  papercheck submit paper.txt --server http://localhost:5001 --mode full`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitServer, "server", "http://localhost:5001", "server base URL")
	submitCmd.Flags().StringVar(&submitMode, "mode", "quick", "analysis mode (full, quick, subjective)")
	submitCmd.Flags().StringVar(&submitOut, "out", "", "write the annotated report to this path")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	path := args[0]
	mode := model.AnalysisMode(submitMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown analysis mode %q (supported: full, quick, subjective)", submitMode)
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

	c := client.New(submitServer, cfg.Poll, logger)
	ctx := context.Background()

	docID, err := c.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Uploaded as document %s\n", docID)
	}

	taskID, err := c.StartAnalysis(ctx, docID, mode)
	if err != nil {
		return err
	}
	fmt.Printf("Analysis task %s started, polling...\n", taskID)

	result, err := c.WaitForResult(ctx, taskID)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Analysis complete: %d problems\n", len(result.Problems))
	for _, p := range result.Problems {
		loc := "unlocated"
		if p.Located() {
			loc = fmt.Sprintf("paragraph %d [%d,%d)", *p.ParagraphIndex, *p.StartOffset, *p.EndOffset)
		}
		fmt.Printf("  #%d %s (%s) %s\n", p.ID, p.Type, p.Severity, loc)
	}

	if submitOut != "" {
		if err := os.WriteFile(submitOut, []byte(result.ReportMarkup), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("✓ Report written to %s\n", submitOut)
	}
	return nil
}
