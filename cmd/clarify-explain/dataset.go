package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/dataset"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/ui"
)

var (
	datasetInput       string
	datasetLabelHeader string
	datasetOutputDir   string
	datasetTrainFrac   float64
	datasetValidFrac   float64
	datasetSeed        int64
)

// datasetCmd represents the dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Clean a CSV dataset and split it for an analysis job",
	Long:  "Load a CSV dataset, drop malformed rows, and write deterministic train/validation/test splits. The test split is what an analysis job explains.",
	RunE:  runDataset,
}

func runDataset(cmd *cobra.Command, args []string) error {
	input := viper.GetString("dataset.input")
	if input == "" {
		return apperr.User("--input is required")
	}
	labelHeader := viper.GetString("dataset.label-header")
	if labelHeader == "" {
		return apperr.User("--label-header is required")
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	ds, err := dataset.Load(f, labelHeader)
	f.Close()
	if err != nil {
		return err
	}

	// Fail early on an unusable label column rather than after splitting.
	if _, err := ds.Labels(); err != nil {
		return err
	}

	train, valid, test, err := ds.Split(
		viper.GetFloat64("dataset.train"),
		viper.GetFloat64("dataset.valid"),
		viper.GetInt64("dataset.seed"))
	if err != nil {
		return apperr.Userf("%v", err)
	}

	outDir := viper.GetString("dataset.output-dir")
	if outDir == "" {
		outDir = "dist"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	splits := []struct {
		name string
		ds   *dataset.Dataset
	}{
		{"train.csv", train},
		{"validation.csv", valid},
		{"test.csv", test},
	}
	for _, s := range splits {
		path := filepath.Join(outDir, s.name)
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		err = s.ds.Write(out)
		out.Close()
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			ui.GetCheckMark(),
			ui.Highlight.Render(path),
			ui.Dim.Render(fmt.Sprintf("→ %d row(s)", len(s.ds.Rows))))
	}
	return nil
}

func init() {
	datasetCmd.Flags().StringVarP(&datasetInput, "input", "i", "", "CSV dataset with a header row")
	datasetCmd.Flags().StringVar(&datasetLabelHeader, "label-header", "", "Name of the ground-truth column")
	datasetCmd.Flags().StringVarP(&datasetOutputDir, "output-dir", "o", "", "Directory for the split files (default dist)")
	datasetCmd.Flags().Float64Var(&datasetTrainFrac, "train", 0.7, "Train fraction")
	datasetCmd.Flags().Float64Var(&datasetValidFrac, "valid", 0.2, "Validation fraction (test gets the remainder)")
	datasetCmd.Flags().Int64Var(&datasetSeed, "seed", 42, "Shuffle seed (a given dataset and seed always split the same way)")

	// Bind all flags to viper for config file support
	viper.BindPFlag("dataset.input", datasetCmd.Flags().Lookup("input"))
	viper.BindPFlag("dataset.label-header", datasetCmd.Flags().Lookup("label-header"))
	viper.BindPFlag("dataset.output-dir", datasetCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("dataset.train", datasetCmd.Flags().Lookup("train"))
	viper.BindPFlag("dataset.valid", datasetCmd.Flags().Lookup("valid"))
	viper.BindPFlag("dataset.seed", datasetCmd.Flags().Lookup("seed"))
}
