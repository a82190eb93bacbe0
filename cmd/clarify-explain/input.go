package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/explain"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/predict"
)

// loadParsed reads an explanation payload, picking the parser by extension:
// .csv is a tabular attribution table, everything else is JSON Lines.
func loadParsed(path string) ([]explain.Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return explain.ParseCSV(f)
	}
	return explain.ParseJSONLines(f)
}

// loadFloats reads one float per line, skipping blank lines.
func loadFloats(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []float64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// loadInts reads one integer label per line, skipping blank lines.
func loadInts(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []int
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// loadLines reads raw instance lines for endpoint scoring.
func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if text := strings.TrimSpace(sc.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out, sc.Err()
}

// resolvePredictions produces one score per instance, either from a scores
// file or by invoking a hosted inference endpoint on raw instances.
func resolvePredictions(ctx context.Context, predictionsPath, instancesPath string, p predict.Predictor) ([]float64, error) {
	switch {
	case predictionsPath != "":
		return loadFloats(predictionsPath)

	case instancesPath != "":
		if p == nil {
			return nil, apperr.User("--instances requires an inference endpoint (set --endpoint-url or session.endpoint-url)")
		}
		instances, err := loadLines(instancesPath)
		if err != nil {
			return nil, err
		}
		return p.Predict(ctx, instances)

	default:
		return nil, apperr.User("either --predictions or --instances is required")
	}
}
