package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/moodlebank/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// RenderJSON writes the run report as indented JSON
func RenderJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderProgress prints the per-page lines of a run
func RenderProgress(w io.Writer, report *model.RunReport) {
	for _, doc := range report.Documents {
		name := filepath.Base(doc.File)
		if doc.Error != "" {
			fmt.Fprintf(w, "✗ %s: %s\n", name, doc.Error)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d questions (%d new, %d duplicate)\n", name, doc.Questions, doc.New, doc.Duplicates)
	}
}

// RenderSummary prints the completion banner of a run
func RenderSummary(w io.Writer, report *model.RunReport) {
	title := "Extraction Complete"
	if report.DryRun {
		title += " (dry run)"
	}

	fmt.Fprintf(w, "\n%s\n  %s\n%s\n\n", rule, title, rule)
	if report.Files == 0 {
		fmt.Fprintf(w, "  No HTML files found%s\n\n", inDir(report.InputDir))
		return
	}

	fmt.Fprintf(w, "  Files:       %d processed, %d failed\n", report.Processed(), report.Failed)
	fmt.Fprintf(w, "  Questions:   %d\n", report.Questions)
	fmt.Fprintf(w, "  New:         %d\n", report.New)
	fmt.Fprintf(w, "  Duplicates:  %d\n", report.Duplicates)
	fmt.Fprintf(w, "  Output:      %s\n", report.Output)
	fmt.Fprintf(w, "  Index:       %s\n\n", report.IndexMode)
}

func inDir(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return " in " + dir
}
