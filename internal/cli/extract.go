package cli

import (
	"fmt"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/pipeline"
	"github.com/spf13/cobra"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [input-dir]",
	Short: "Extract answers from saved quiz review pages",
	Long: `Extract reads every saved quiz review page (*.html) in the input directory:
- Find each question and its correct answers
- Skip questions already present in the output file
- Append the new ones under the name of their test

Example:
  moodlebank extract
  moodlebank extract ./moodle --output answers.md
  moodlebank extract --list pages.txt --dry-run --json run.json
  moodlebank extract --index-mode store --store-dir .moodlebank-index`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	defaults := model.DefaultConfig()

	// Input flags
	extractCmd.Flags().String("input-dir", defaults.Input.Dir, "directory containing saved quiz review pages")
	extractCmd.Flags().String("list", "", "file listing pages to process, one per line (overrides input-dir)")
	extractCmd.Flags().Int64("max-bytes", defaults.Input.MaxBytes, "max bytes read per page")

	// Output flags
	extractCmd.Flags().StringP("output", "o", defaults.Output.CorpusPath, "answer file to append to")
	extractCmd.Flags().String("json", "", "write a JSON run report to this path (optional)")
	extractCmd.Flags().Bool("dry-run", false, "report what would be added without writing")

	// Index flags
	extractCmd.Flags().String("index-mode", defaults.Index.Mode, "duplicate index: corpus (reparse output file) or store (persisted keys)")
	extractCmd.Flags().String("store-dir", defaults.Index.StoreDir, "directory of the persisted index in store mode")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := cmd.Flags().Set("input-dir", args[0]); err != nil {
			return err
		}
	}

	err := bindFlags(cmd.Flags(), map[string]string{
		"input.dir":          "input-dir",
		"input.list_file":    "list",
		"input.max_bytes":    "max-bytes",
		"output.corpus_path": "output",
		"output.report_json": "json",
		"output.dry_run":     "dry-run",
		"index.mode":         "index-mode",
		"index.store_dir":    "store-dir",
	})
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if cfg.Output.Verbose {
		source := cfg.Input.Dir
		if cfg.Input.ListFile != "" {
			source = cfg.Input.ListFile
		}
		fmt.Fprintf(stderr, "Input:   %s\n", source)
		fmt.Fprintf(stderr, "Output:  %s\n", cfg.Output.CorpusPath)
		fmt.Fprintf(stderr, "Index:   %s\n\n", cfg.Index.Mode)
	}

	report, err := pipeline.NewPipeline(cfg).Run()
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	pipeline.RenderProgress(stderr, report)
	pipeline.RenderSummary(stderr, report)

	if cfg.Output.ReportJSON != "" {
		if err := pipeline.RenderJSON(report, cfg.Output.ReportJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(stderr, "✓ Wrote JSON: %s\n", cfg.Output.ReportJSON)
		}
	}

	return nil
}
