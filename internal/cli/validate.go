package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akorchak/veracity/internal/model"
	"github.com/akorchak/veracity/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	metricsPath     string
	validateOut     string
	validateTimeout time.Duration
	noSemantic      bool
	llmProvider     string
	llmModel        string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <report-file>",
	Short: "Verify a report's numeric and semantic claims against metrics",
	Long: `Validate extracts every numeric claim from a report and checks it
against the ground-truth metrics record:
- Percentages and plain numbers must match a metric within tolerance
- Counts must match an integral metric exactly
- Unsupported and mismatched numbers are reported individually
- With an LLM provider configured, the model cross-checks factual
  consistency beyond the raw numbers

The verdict is written as JSON. The command exits non-zero when the
report fails validation, so it can gate a publishing pipeline.

Example:
  veracity validate q3_report.txt --metrics q3_metrics.json
  veracity validate q3_report.txt --metrics q3.yaml --llm-provider openai
  veracity validate q3_report.txt --metrics q3.json --no-semantic -o verdict.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&metricsPath, "metrics", "m", "", "metrics record file (JSON or YAML, required)")
	validateCmd.Flags().StringVarP(&validateOut, "output", "o", "", "output JSON path (default: stdout)")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", 2*time.Minute, "overall validation timeout")
	validateCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip LLM semantic validation (deterministic only)")
	validateCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider override (openai, anthropic, ollama)")
	validateCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model override")

	_ = validateCmd.MarkFlagRequired("metrics")
}

func runValidate(cmd *cobra.Command, args []string) error {
	reportPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()

	report, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	metricsData, err := os.ReadFile(metricsPath)
	if err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}
	metrics, err := model.ParseMetrics(metricsData)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	applyLLMOverrides(cfg)
	if noSemantic {
		cfg.LLM.Provider = ""
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Validating: %s\n", reportPath)
		fmt.Fprintf(os.Stderr, "Metrics: %s (%d values)\n", metricsPath, len(metrics))
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "Semantic validation: %s\n", cfg.LLM.Provider)
		} else {
			fmt.Fprintf(os.Stderr, "Semantic validation: disabled\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	engine, err := pipeline.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	verdict, err := engine.Validate(ctx, string(report), metrics)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := pipeline.WriteJSON(verdict, validateOut); err != nil {
		return err
	}

	if !verdict.Valid {
		return fmt.Errorf("report failed validation with %d error(s)", len(verdict.Errors))
	}

	return nil
}

// applyLLMOverrides layers command-line LLM flags over the loaded config
func applyLLMOverrides(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		if cfg.LLM.APIKey == "" {
			switch llmProvider {
			case "openai":
				cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			case "anthropic", "claude":
				cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			}
		}
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}
