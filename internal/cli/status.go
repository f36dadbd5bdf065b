package cli

import (
	"context"
	"time"

	"github.com/akorchak/veracity/internal/pipeline"
	"github.com/spf13/cobra"
)

var statusOut string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report vector store readiness and corpus size",
	Long: `Status connects to the configured vector store and reports its
backend, readiness and the number of stored corpus chunks.

Example:
  veracity status
  veracity status -o status.json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOut, "output", "o", "", "output JSON path (default: stdout)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine, err := pipeline.NewEngine(loadConfig())
	if err != nil {
		return err
	}
	defer engine.Close()

	return pipeline.WriteJSON(engine.Status(ctx), statusOut)
}
