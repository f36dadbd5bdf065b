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
	scoreOut     string
	scoreTimeout time.Duration
	scoreTopK    int
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <report-file>",
	Short: "Grade a report's style against the house standard",
	Long: `Score grades a report on three weighted components:
- Structural checks: word count, paragraph structure, data integration
- Language quality: tone, clarity, coherence and engagement, judged by
  an LLM when one is configured
- Historical similarity: embedding distance against the ingested corpus
  of past reports

Missing collaborators degrade their component to zero with an
explanatory note; the command itself still succeeds.

Example:
  veracity score q3_report.txt
  veracity score q3_report.txt --llm-provider openai -o score.json
  veracity score q3_report.txt --top-k 5`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreOut, "output", "o", "", "output JSON path (default: stdout)")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 2*time.Minute, "overall scoring timeout")
	scoreCmd.Flags().IntVar(&scoreTopK, "top-k", 0, "historical chunks to compare against (default from config)")
	scoreCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider override (openai, anthropic, ollama)")
	scoreCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model override")
}

func runScore(cmd *cobra.Command, args []string) error {
	reportPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scoreTimeout)
	defer cancel()

	report, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	cfg := loadConfig()
	applyLLMOverrides(cfg)
	if scoreTopK > 0 {
		cfg.Scoring.TopK = scoreTopK
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scoring: %s\n", reportPath)
		fmt.Fprintln(os.Stderr)
	}

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Score(ctx, string(report))
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	return pipeline.WriteJSON(result, scoreOut)
}
