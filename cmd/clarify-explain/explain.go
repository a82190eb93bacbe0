package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/config"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/explain"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/predict"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/render"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/ui"
)

var (
	explainInput       string
	explainPredictions string
	explainLabels      string
	explainInstances   string
	explainEndpointURL string

	explainFormat      string
	explainTopFraction float64
	explainMatchPred   bool
	explainNormalize   bool
	explainWorkers     int
	explainChartWidth  int
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Post-process an explanation payload and visualize it",
	Long:  "Post-process an analysis job's attribution payload (JSON Lines or CSV) and render each instance as highlighted text, a bar chart or JSON. Predictions come from a scores file or from a hosted inference endpoint via --instances.",
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	input := viper.GetString("explain.input")
	if input == "" {
		return apperr.User("--input is required")
	}

	format := viper.GetString("explain.format")
	if format == "" {
		format = "text"
	}
	switch format {
	case "text", "chart", "json":
		// ok
	default:
		return apperr.Userf("invalid --format %q (expected text|chart|json)", format)
	}

	fraction := viper.GetFloat64("explain.top-fraction")
	if fraction < 0 || fraction > 1 {
		return apperr.Userf("invalid --top-fraction %v (expected 0..1)", fraction)
	}

	session := config.FromViper()
	endpointURL := viper.GetString("explain.endpoint-url")
	if endpointURL == "" {
		endpointURL = session.EndpointURL
	}

	var predictor predict.Predictor
	if endpointURL != "" {
		predictor = &predict.EndpointPredictor{
			Client:      predictHTTPClient(session),
			EndpointURL: endpointURL,
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Progress goes to stderr so JSON output stays machine-readable.
	workflow := ui.NewWorkflow(cmd.ErrOrStderr())
	parseTask := workflow.AddTask("Parsing explanations")
	scoreTask := workflow.AddTask("Resolving predictions")
	processTask := workflow.AddTask("Processing instances")
	workflow.Start()
	defer workflow.Stop()

	workflow.StartTask(parseTask, "")
	parsed, err := loadParsed(input)
	if err != nil {
		workflow.FailTask(parseTask, err.Error())
		return err
	}
	workflow.CompleteTask(parseTask, fmt.Sprintf("%d instance(s)", len(parsed)))

	workflow.StartTask(scoreTask, "")
	predictions, err := resolvePredictions(ctx,
		viper.GetString("explain.predictions"),
		viper.GetString("explain.instances"),
		predictor)
	if err != nil {
		workflow.FailTask(scoreTask, err.Error())
		return err
	}
	workflow.CompleteTask(scoreTask, fmt.Sprintf("%d score(s)", len(predictions)))

	var labels []int
	if path := viper.GetString("explain.labels"); path != "" {
		labels, err = loadInts(path)
		if err != nil {
			return err
		}
	}

	workflow.StartTask(processTask, "")
	results, err := explain.Process(ctx, parsed, predictions, labels, explain.Options{
		Normalize:        viper.GetBool("explain.normalize"),
		SalienceFraction: fraction,
		MatchToPred:      viper.GetBool("explain.match-pred"),
		Workers:          viper.GetInt("explain.workers"),
	})
	if err != nil {
		workflow.FailTask(processTask, err.Error())
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		workflow.CompleteTask(processTask, fmt.Sprintf("%d ok, %d skipped", len(results)-failed, failed))
	} else {
		workflow.CompleteTask(processTask, fmt.Sprintf("%d instance(s)", len(results)))
	}
	workflow.Stop()

	return writeResults(cmd, results, format)
}

func writeResults(cmd *cobra.Command, results []explain.Result, format string) error {
	out := cmd.OutOrStdout()

	if format == "json" {
		records := make([]explain.Record, 0, len(results))
		for i, res := range results {
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s instance %d: %v\n", ui.GetWarnMark(), i, res.Err)
				continue
			}
			records = append(records, res.Record)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	width := viper.GetInt("explain.width")
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s instance %d: %v\n\n", ui.GetCrossMark(), i, res.Err)
			continue
		}
		fmt.Fprintln(out, render.Summary(res.Record))
		switch format {
		case "text":
			fmt.Fprintln(out, render.Text(res.Record))
		case "chart":
			fmt.Fprintln(out, render.BarChart(res.Record, width))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func predictHTTPClient(session config.Session) *http.Client {
	return &http.Client{Timeout: session.Timeout}
}

func init() {
	explainCmd.Flags().StringVarP(&explainInput, "input", "i", "", "Explanation payload (.jsonl from an analysis job, or .csv attribution table)")
	explainCmd.Flags().StringVarP(&explainPredictions, "predictions", "p", "", "Scores file, one prediction per line")
	explainCmd.Flags().StringVarP(&explainLabels, "labels", "l", "", "Ground-truth labels file, one integer per line")
	explainCmd.Flags().StringVar(&explainInstances, "instances", "", "Raw instances file to score via the inference endpoint (alternative to --predictions)")
	explainCmd.Flags().StringVar(&explainEndpointURL, "endpoint-url", "", "Inference endpoint URL used with --instances")
	explainCmd.Flags().StringVarP(&explainFormat, "format", "f", "", "Output format: text|chart|json")
	explainCmd.Flags().Float64Var(&explainTopFraction, "top-fraction", 0, "Keep only the top fraction of salient units per instance (0 or 1 keeps everything)")
	explainCmd.Flags().BoolVar(&explainMatchPred, "match-pred", false, "Rank salience as evidence toward the predicted class instead of absolute importance")
	explainCmd.Flags().BoolVar(&explainNormalize, "normalize", false, "Rescale each instance's attributions to a max absolute value of 1")
	explainCmd.Flags().IntVar(&explainWorkers, "workers", 0, "Concurrent instance workers (0 = one per CPU)")
	explainCmd.Flags().IntVar(&explainChartWidth, "width", 40, "Maximum bar width for --format chart")

	// Bind all flags to viper for config file support
	viper.BindPFlag("explain.input", explainCmd.Flags().Lookup("input"))
	viper.BindPFlag("explain.predictions", explainCmd.Flags().Lookup("predictions"))
	viper.BindPFlag("explain.labels", explainCmd.Flags().Lookup("labels"))
	viper.BindPFlag("explain.instances", explainCmd.Flags().Lookup("instances"))
	viper.BindPFlag("explain.endpoint-url", explainCmd.Flags().Lookup("endpoint-url"))
	viper.BindPFlag("explain.format", explainCmd.Flags().Lookup("format"))
	viper.BindPFlag("explain.top-fraction", explainCmd.Flags().Lookup("top-fraction"))
	viper.BindPFlag("explain.match-pred", explainCmd.Flags().Lookup("match-pred"))
	viper.BindPFlag("explain.normalize", explainCmd.Flags().Lookup("normalize"))
	viper.BindPFlag("explain.workers", explainCmd.Flags().Lookup("workers"))
	viper.BindPFlag("explain.width", explainCmd.Flags().Lookup("width"))
}
