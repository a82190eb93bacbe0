package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/analysis"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/config"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/ui"
)

var (
	analyzeSpecFile string
	analyzeOutput   string

	analyzeName        string
	analyzeAnalysis    string
	analyzeDatasetURI  string
	analyzeModel       string
	analyzeLabelHeader string
	analyzeGranularity string
	analyzeBaseline    string
	analyzeSamples     int
	analyzeFacet       string

	// analyzeMode controls whether jobs run against the real service.
	// Supported values: online|dummy
	analyzeMode         string
	analyzeBaseURL      string
	analyzeToken        string
	analyzePollInterval int
	analyzeYes          bool
	analyzeVerbose      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Submit an analysis job and fetch its explanation payload",
	Long:  "Submit a SHAP or bias analysis job to the managed explainability service, poll it to completion and write the explanation payload to a file. The job is described by a YAML spec file or by flags.",
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Resolve effective mode (from config, env, or flag).
	mode := strings.ToLower(strings.TrimSpace(viper.GetString("analyze.mode")))
	if mode == "" {
		mode = "online"
	}
	switch mode {
	case "online", "dummy":
		// ok
	default:
		return apperr.Userf("invalid --mode %q (expected online|dummy)", mode)
	}

	spec, err := resolveJobSpec()
	if err != nil {
		return err
	}

	if viper.GetBool("analyze.verbose") {
		analysis.SetLogger(cmd.ErrOrStderr())
	}

	session := config.FromViper()
	if url := viper.GetString("analyze.base-url"); url != "" {
		session.BaseURL = url
	}
	if token := viper.GetString("analyze.token"); token != "" {
		session.Token = token
	}

	var svc analysis.Service
	if mode == "dummy" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Using dummy mode (no API calls)\n", ui.GetBullet())
		svc = analysis.NewDummyService()
	} else {
		if err := session.RequireBaseURL(); err != nil {
			return err
		}
		svc = &analysis.HTTPService{
			Client:  analysis.NewClient(session.Timeout, session.Token),
			BaseURL: session.BaseURL,
		}
	}

	if !viper.GetBool("analyze.yes") {
		if err := confirmSubmit(cmd, spec); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	job, err := svc.Submit(ctx, spec)
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}

	interval := time.Duration(viper.GetInt("analyze.poll-interval")) * time.Second
	if mode == "dummy" && !cmd.Flags().Changed("poll-interval") {
		// Dummy jobs complete in a couple of polls; don't make the user wait.
		interval = 100 * time.Millisecond
	}

	watcher := ui.NewJobWatcher()
	watcher.Start(job.Name)

	status, waitErr := analysis.Wait(ctx, svc, job.Name, interval, func(st analysis.JobStatus) {
		watcher.Report(string(st.State))
	})
	watcher.Complete(waitErr)
	if waitErr != nil {
		return waitErr
	}

	output := viper.GetString("analyze.output")
	if output == "" {
		output = filepath.Join("dist", job.Name+".jsonl")
	}
	if err := fetchResult(ctx, svc, job.Name, output); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
		ui.GetCheckMark(),
		ui.Highlight.Render(job.Name),
		ui.Dim.Render(fmt.Sprintf("→ %s (%s)", output, status.State)))
	return nil
}

// resolveJobSpec builds the job description from --spec or from flags. Flags
// override spec file fields, so a shared YAML can be tweaked per run.
func resolveJobSpec() (analysis.JobSpec, error) {
	var spec analysis.JobSpec

	if path := viper.GetString("analyze.spec"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return spec, err
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return spec, fmt.Errorf("parse job spec %s: %w", path, err)
		}
	}

	if v := viper.GetString("analyze.name"); v != "" {
		spec.Name = v
	}
	if v := viper.GetString("analyze.analysis"); v != "" {
		spec.Analysis = v
	}
	if v := viper.GetString("analyze.dataset-uri"); v != "" {
		spec.DatasetURI = v
	}
	if v := viper.GetString("analyze.model"); v != "" {
		spec.ModelName = v
	}
	if v := viper.GetString("analyze.label-header"); v != "" {
		spec.LabelHeader = v
	}
	if v := viper.GetString("analyze.granularity"); v != "" {
		spec.Granularity = v
	}
	if v := viper.GetString("analyze.baseline"); v != "" {
		spec.Baseline = v
	}
	if v := viper.GetInt("analyze.samples"); v > 0 {
		spec.Samples = v
	}
	if v := viper.GetString("analyze.facet"); v != "" {
		spec.Facet = v
	}

	switch spec.Analysis {
	case "shap", "bias":
		// ok
	case "":
		return spec, apperr.User("--analysis (or a spec file with an analysis field) is required: shap|bias")
	default:
		return spec, apperr.Userf("invalid analysis %q (expected shap|bias)", spec.Analysis)
	}
	if spec.DatasetURI == "" {
		return spec, apperr.User("--dataset-uri is required")
	}
	if spec.ModelName == "" {
		return spec, apperr.User("--model is required")
	}
	if spec.Analysis == "bias" && spec.Facet == "" {
		return spec, apperr.User("bias analysis requires --facet")
	}

	return spec, nil
}

func confirmSubmit(cmd *cobra.Command, spec analysis.JobSpec) error {
	var sb strings.Builder
	name := spec.Name
	if name == "" {
		name = "(generated)"
	}
	sb.WriteString(ui.FormatKeyValue("Job", name) + "\n")
	sb.WriteString(ui.FormatKeyValue("Analysis", spec.Analysis) + "\n")
	sb.WriteString(ui.FormatKeyValue("Dataset", spec.DatasetURI) + "\n")
	sb.WriteString(ui.FormatKeyValue("Model", spec.ModelName))
	if spec.Facet != "" {
		sb.WriteString("\n" + ui.FormatKeyValue("Facet", spec.Facet))
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Box.Render(sb.String()))

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Submit job?").
				Description("The managed service will start billing for this analysis run.").
				Value(&confirm).
				Affirmative("Yes").
				Negative("No"),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		return apperr.ErrCancelled
	}
	return nil
}

func fetchResult(ctx context.Context, svc analysis.Service, jobName, output string) error {
	body, err := svc.Result(ctx, jobName)
	if err != nil {
		return fmt.Errorf("fetch result: %w", err)
	}
	defer body.Close()

	dir := filepath.Dir(output)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write result payload: %w", err)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSpecFile, "spec", "s", "", "YAML job spec file (flags override its fields)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Result payload path (default dist/<job>.jsonl)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "Job name (generated when empty)")
	analyzeCmd.Flags().StringVar(&analyzeAnalysis, "analysis", "", "Analysis to run: shap|bias")
	analyzeCmd.Flags().StringVar(&analyzeDatasetURI, "dataset-uri", "", "Input dataset URI")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Hosted model/endpoint the service explains")
	analyzeCmd.Flags().StringVar(&analyzeLabelHeader, "label-header", "", "Ground-truth column name")
	analyzeCmd.Flags().StringVar(&analyzeGranularity, "granularity", "", "Text unit for explanations: token|sentence|paragraph")
	analyzeCmd.Flags().StringVar(&analyzeBaseline, "baseline", "", "Replacement value used when perturbing a unit")
	analyzeCmd.Flags().IntVar(&analyzeSamples, "samples", 0, "Perturbed samples per instance (0 lets the service pick)")
	analyzeCmd.Flags().StringVar(&analyzeFacet, "facet", "", "Facet attribute for bias analysis")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "Service mode: online|dummy")
	analyzeCmd.Flags().StringVar(&analyzeBaseURL, "base-url", "", "Analysis service API root")
	analyzeCmd.Flags().StringVar(&analyzeToken, "token", "", "API bearer token")
	analyzeCmd.Flags().IntVar(&analyzePollInterval, "poll-interval", 5, "Seconds between status polls")
	analyzeCmd.Flags().BoolVarP(&analyzeYes, "yes", "y", false, "Skip the submission confirmation")
	analyzeCmd.Flags().BoolVar(&analyzeVerbose, "verbose", false, "Log service calls to stderr")

	// Bind all flags to viper for config file support
	viper.BindPFlag("analyze.spec", analyzeCmd.Flags().Lookup("spec"))
	viper.BindPFlag("analyze.output", analyzeCmd.Flags().Lookup("output"))
	viper.BindPFlag("analyze.name", analyzeCmd.Flags().Lookup("name"))
	viper.BindPFlag("analyze.analysis", analyzeCmd.Flags().Lookup("analysis"))
	viper.BindPFlag("analyze.dataset-uri", analyzeCmd.Flags().Lookup("dataset-uri"))
	viper.BindPFlag("analyze.model", analyzeCmd.Flags().Lookup("model"))
	viper.BindPFlag("analyze.label-header", analyzeCmd.Flags().Lookup("label-header"))
	viper.BindPFlag("analyze.granularity", analyzeCmd.Flags().Lookup("granularity"))
	viper.BindPFlag("analyze.baseline", analyzeCmd.Flags().Lookup("baseline"))
	viper.BindPFlag("analyze.samples", analyzeCmd.Flags().Lookup("samples"))
	viper.BindPFlag("analyze.facet", analyzeCmd.Flags().Lookup("facet"))
	viper.BindPFlag("analyze.mode", analyzeCmd.Flags().Lookup("mode"))
	viper.BindPFlag("analyze.base-url", analyzeCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("analyze.token", analyzeCmd.Flags().Lookup("token"))
	viper.BindPFlag("analyze.poll-interval", analyzeCmd.Flags().Lookup("poll-interval"))
	viper.BindPFlag("analyze.yes", analyzeCmd.Flags().Lookup("yes"))
	viper.BindPFlag("analyze.verbose", analyzeCmd.Flags().Lookup("verbose"))
}
