package cli

import (
	"fmt"

	"github.com/ppiankov/moodlebank/internal/corpus"
	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/spf13/cobra"
)

// indexCmd groups commands that inspect duplicate detection state
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or rebuild the duplicate index",
	Long: `The duplicate index holds one entry per question/answer set already in
the answer file. In corpus mode it is rebuilt from the answer file on every
run; in store mode it is kept on disk and seeded from the answer file once.`,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many unique questions are indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadIndexConfig(cmd)
		if err != nil {
			return err
		}

		idx, err := corpus.LoadIndex(cfg.Output.CorpusPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Answer file:  %s\n", cfg.Output.CorpusPath)
		fmt.Fprintf(out, "Unique:       %d\n", idx.Len())

		if cfg.Index.Mode == model.IndexModeStore {
			store, err := corpus.OpenStore(cfg.Index.StoreDir, cfg.Output.CorpusPath)
			if err != nil {
				return err
			}
			n, err := store.Len()
			if err != nil {
				return fmt.Errorf("count store: %w", err)
			}
			fmt.Fprintf(out, "Store:        %s (%d entries)\n", cfg.Index.StoreDir, n)
		}
		return nil
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reseed the persisted index from the answer file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadIndexConfig(cmd)
		if err != nil {
			return err
		}

		n, err := corpus.NewDiskStore(cfg.Index.StoreDir).Rebuild(cfg.Output.CorpusPath)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %d unique questions from %s into %s\n", n, cfg.Output.CorpusPath, cfg.Index.StoreDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexRebuildCmd)

	defaults := model.DefaultConfig()
	for _, c := range []*cobra.Command{indexStatsCmd, indexRebuildCmd} {
		c.Flags().StringP("output", "o", defaults.Output.CorpusPath, "answer file")
		c.Flags().String("index-mode", defaults.Index.Mode, "duplicate index: corpus or store")
		c.Flags().String("store-dir", defaults.Index.StoreDir, "directory of the persisted index")
	}
}

func loadIndexConfig(cmd *cobra.Command) (*model.Config, error) {
	err := bindFlags(cmd.Flags(), map[string]string{
		"output.corpus_path": "output",
		"index.mode":         "index-mode",
		"index.store_dir":    "store-dir",
	})
	if err != nil {
		return nil, err
	}
	return loadConfig()
}
