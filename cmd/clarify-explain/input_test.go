package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/predict"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsed_PicksParserByExtension(t *testing.T) {
	jsonl := writeFile(t, "payload.jsonl",
		`{"attributions":[{"attribution":[0.5],"description":{"partial_text":"good","start_idx":0}}],"delta":0.01}`+"\n")
	parsed, err := loadParsed(jsonl)
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Instance.Units[0] != "good" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}

	csvPath := writeFile(t, "payload.csv", "age,income\n0.3,-0.1\n")
	parsed, err = loadParsed(csvPath)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Instance.Units[0] != "age" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestLoadFloatsAndInts_SkipBlanks(t *testing.T) {
	scores := writeFile(t, "scores.txt", "0.9\n\n0.2\n")
	got, err := loadFloats(scores)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 0.9 || got[1] != 0.2 {
		t.Fatalf("loadFloats = %v", got)
	}

	labels := writeFile(t, "labels.txt", "1\n0\n\n")
	ints, err := loadInts(labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(ints) != 2 || ints[0] != 1 || ints[1] != 0 {
		t.Fatalf("loadInts = %v", ints)
	}

	bad := writeFile(t, "bad.txt", "abc\n")
	if _, err := loadFloats(bad); err == nil {
		t.Fatalf("expected error for non-numeric score")
	}
}

func TestResolvePredictions(t *testing.T) {
	scores := writeFile(t, "scores.txt", "0.7\n")
	got, err := resolvePredictions(context.Background(), scores, "", nil)
	if err != nil || len(got) != 1 || got[0] != 0.7 {
		t.Fatalf("file predictions = %v, %v", got, err)
	}

	instances := writeFile(t, "instances.txt", "a great movie\nterrible plot\n")
	got, err = resolvePredictions(context.Background(), "", instances, &predict.ConstantPredictor{Score: 0.5})
	if err != nil || len(got) != 2 {
		t.Fatalf("endpoint predictions = %v, %v", got, err)
	}

	if _, err := resolvePredictions(context.Background(), "", instances, nil); !apperr.IsUser(err) {
		t.Fatalf("expected user error without a predictor, got %v", err)
	}
	if _, err := resolvePredictions(context.Background(), "", "", nil); !apperr.IsUser(err) {
		t.Fatalf("expected user error with no source, got %v", err)
	}
}
