package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/analysis"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/explain"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/report"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/ui"
)

var (
	reportInput       string
	reportPredictions string
	reportLabels      string
	reportSpecFile    string
	reportOutput      string
	reportTopK        int
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize an explained run as a CycloneDX model report",
	Long:  "Aggregate a processed explanation payload into global unit importances and accuracy, and write them as a CycloneDX BOM whose model card documents the analyzed model.",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	input := viper.GetString("report.input")
	if input == "" {
		return apperr.User("--input is required")
	}

	var spec analysis.JobSpec
	if path := viper.GetString("report.spec"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("parse job spec %s: %w", path, err)
		}
	}
	if spec.ModelName == "" {
		return apperr.User("--spec with a model_name field is required (the report documents a model)")
	}

	parsed, err := loadParsed(input)
	if err != nil {
		return err
	}
	predictionsPath := viper.GetString("report.predictions")
	if predictionsPath == "" {
		return apperr.User("--predictions is required")
	}
	predictions, err := loadFloats(predictionsPath)
	if err != nil {
		return err
	}

	var labels []int
	if path := viper.GetString("report.labels"); path != "" {
		labels, err = loadInts(path)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Aggregation works on raw attributions; salience filtering would skew
	// the global importances.
	results, err := explain.Process(ctx, parsed, predictions, labels, explain.Options{})
	if err != nil {
		return err
	}

	records := make([]explain.Record, 0, len(results))
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s instance %d: %v\n", ui.GetWarnMark(), i, res.Err)
			continue
		}
		records = append(records, res.Record)
	}
	if len(records) == 0 {
		return fmt.Errorf("no usable instances in %s", input)
	}

	bom := report.Build(spec, records, viper.GetInt("report.top-k"))

	output := viper.GetString("report.output")
	if output == "" {
		output = filepath.Join("dist", "clarify-report.json")
	}
	dir := filepath.Dir(output)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := report.WriteBOM(bom, output); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d instance(s)", len(records))
	if acc, ok := report.Accuracy(records); ok {
		summary += fmt.Sprintf(", accuracy %.2f", acc)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
		ui.GetCheckMark(),
		ui.Highlight.Render(spec.ModelName),
		ui.Dim.Render(fmt.Sprintf("→ %s (%s)", output, summary)))
	return nil
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "Explanation payload (.jsonl or .csv)")
	reportCmd.Flags().StringVarP(&reportPredictions, "predictions", "p", "", "Scores file, one prediction per line")
	reportCmd.Flags().StringVarP(&reportLabels, "labels", "l", "", "Ground-truth labels file, one integer per line")
	reportCmd.Flags().StringVarP(&reportSpecFile, "spec", "s", "", "YAML job spec describing the analyzed model")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Report path, .json or .xml (default dist/clarify-report.json)")
	reportCmd.Flags().IntVar(&reportTopK, "top-k", 0, "Cap on importance entries in the model card (0 = all)")

	// Bind all flags to viper for config file support
	viper.BindPFlag("report.input", reportCmd.Flags().Lookup("input"))
	viper.BindPFlag("report.predictions", reportCmd.Flags().Lookup("predictions"))
	viper.BindPFlag("report.labels", reportCmd.Flags().Lookup("labels"))
	viper.BindPFlag("report.spec", reportCmd.Flags().Lookup("spec"))
	viper.BindPFlag("report.output", reportCmd.Flags().Lookup("output"))
	viper.BindPFlag("report.top-k", reportCmd.Flags().Lookup("top-k"))
}
