package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akorchak/veracity/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	ingestOut     string
	ingestTimeout time.Duration
	ingestWorkers int
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Embed historical reports into the vector store",
	Long: `Ingest loads historical report files (.txt, .md, .html), splits them
into paragraph chunks grouped by quarter, embeds each chunk and upserts
it into the configured vector store.

Chunk ids derive from source name and byte offset, so re-ingesting the
same corpus overwrites in place instead of duplicating.

Example:
  veracity ingest ./corpus/
  veracity ingest memory_2024.txt --workers 8
  veracity ingest ./corpus/ -o ingest_summary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestOut, "output", "o", "", "output JSON path for the summary (default: stdout)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 10*time.Minute, "total ingestion timeout")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "embedding concurrency (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg := loadConfig()
	if ingestWorkers > 0 {
		cfg.Ingest.Workers = ingestWorkers
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Ingesting: %s\n", path)
		fmt.Fprintf(os.Stderr, "Store backend: %s\n", cfg.Store.Backend)
		fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Ingest.Workers)
		fmt.Fprintln(os.Stderr)
	}

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	summary, err := engine.Ingest(ctx, path)
	if summary != nil {
		if writeErr := pipeline.WriteJSON(summary, ingestOut); writeErr != nil && err == nil {
			err = writeErr
		}
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Ingested %d chunks from %d documents\n", summary.Upserted, summary.Documents)
	}

	return nil
}
