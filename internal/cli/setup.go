package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hikarile/ToyoAgent/config"
	"github.com/hikarile/ToyoAgent/internal/embedding"
	"github.com/hikarile/ToyoAgent/internal/ingest"
	"github.com/hikarile/ToyoAgent/internal/salesdb"
	"github.com/hikarile/ToyoAgent/pkg/utils"
)

func newSetupCmd() *cobra.Command {
	var skipDocs, skipData bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Build the vector index from PDFs and load CSVs into the sales database",
		Long: "Runs the two offline data-setup procedures once, sequentially:\n" +
			"the document index build (PDFs, per-category subdirectories) and the\n" +
			"CSV import (one table per file). Both fully replace previous state.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), skipDocs, skipData)
		},
	}
	cmd.Flags().BoolVar(&skipDocs, "skip-docs", false, "skip the document index build")
	cmd.Flags().BoolVar(&skipData, "skip-data", false, "skip the CSV import")
	return cmd
}

func runSetup(ctx context.Context, skipDocs, skipData bool) error {
	cfg := config.DefaultConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !skipDocs {
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required to build the vector index")
		}
		embedder, err := embedding.NewOpenAIEmbedder(ctx, cfg)
		if err != nil {
			return err
		}
		chunks, err := ingest.NewIngestor(cfg, embedder, logger).Run(ctx)
		if err != nil {
			return fmt.Errorf("build vector index: %w", err)
		}
		fmt.Printf("Vector index created with %d chunks.\n", chunks)
	}

	if !skipData {
		if err := salesdb.ImportCSVDir(ctx, cfg.SalesDB, cfg.DataDir, logger); err != nil {
			return fmt.Errorf("import CSV data: %w", err)
		}
		fmt.Println("Sales database setup complete.")
	}

	return nil
}
