package explain

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func instances(n int) []Parsed {
	out := make([]Parsed, n)
	for i := range out {
		out[i] = Parsed{Instance: Instance{
			Units:        []string{"a", "b", "c"},
			Attributions: []float64{0.2, -0.8, 0.1},
		}}
	}
	return out
}

func TestProcess_ScenarioNormalize(t *testing.T) {
	parsed := instances(1)
	results, err := Process(context.Background(), parsed, []float64{0.9}, nil, Options{Normalize: true})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("instance error: %v", results[0].Err)
	}
	want := []float64{0.25, -1.0, 0.125}
	if diff := cmp.Diff(want, results[0].Record.Attributions); diff != "" {
		t.Fatalf("normalized attributions mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_ScenarioSalience(t *testing.T) {
	parsed := instances(1)
	results, err := Process(context.Background(), parsed, []float64{0.3}, nil, Options{
		SalienceFraction: 0.34, // k = floor(0.34*3) = 1
		MatchToPred:      false,
	})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	want := []float64{0, -0.8, 0}
	if diff := cmp.Diff(want, results[0].Record.Attributions); diff != "" {
		t.Fatalf("displayed attributions mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_LengthInvariant(t *testing.T) {
	parsed := instances(4)
	results, err := Process(context.Background(), parsed, []float64{0.1, 0.4, 0.6, 0.9}, nil, Options{
		Normalize:        true,
		SalienceFraction: 0.5,
		MatchToPred:      true,
	})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("instance %d error: %v", i, r.Err)
		}
		if len(r.Record.Attributions) != len(r.Record.Units) {
			t.Fatalf("instance %d: %d attributions for %d units", i, len(r.Record.Attributions), len(r.Record.Units))
		}
	}
}

func TestProcess_OrderIndependence(t *testing.T) {
	parsed := []Parsed{
		{Instance: Instance{Units: []string{"a"}, Attributions: []float64{0.9}}},
		{Instance: Instance{Units: []string{"b", "c"}, Attributions: []float64{-0.4, 0.2}}},
		{Instance: Instance{Units: []string{"d"}, Attributions: []float64{0.0}}},
	}
	preds := []float64{0.8, 0.2, 0.5}

	sequential, err := Process(context.Background(), parsed, preds, nil, Options{Normalize: true, Workers: 1})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	parallel, err := Process(context.Background(), parsed, preds, nil, Options{Normalize: true, Workers: 8})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	for i := range sequential {
		if diff := cmp.Diff(sequential[i].Record, parallel[i].Record); diff != "" {
			t.Fatalf("instance %d differs across worker counts (-seq +par):\n%s", i, diff)
		}
	}
}

func TestProcess_BadInstanceSkipped(t *testing.T) {
	parsed := []Parsed{
		{Instance: Instance{Units: []string{"a"}, Attributions: []float64{0.9}}},
		{Err: &MalformedRecordError{Index: 1, Field: "description"}},
		{Instance: Instance{Units: []string{"b", "c"}, Attributions: []float64{0.1}}}, // shape mismatch
		{Instance: Instance{Units: []string{"d"}, Attributions: []float64{0.5}}},
	}
	preds := []float64{0.8, 0.8, 0.8, 0.8}

	results, err := Process(context.Background(), parsed, preds, nil, Options{})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if results[0].Err != nil || results[3].Err != nil {
		t.Fatalf("good instances should survive: %v, %v", results[0].Err, results[3].Err)
	}
	if !IsMalformed(results[1].Err) {
		t.Fatalf("expected MalformedRecordError at 1, got %v", results[1].Err)
	}
	if !IsShapeMismatch(results[2].Err) {
		t.Fatalf("expected ShapeMismatchError at 2, got %v", results[2].Err)
	}
}

func TestProcess_CountMismatches(t *testing.T) {
	parsed := instances(2)
	if _, err := Process(context.Background(), parsed, []float64{0.5}, nil, Options{}); err == nil {
		t.Fatalf("expected error for prediction count mismatch")
	}
	if _, err := Process(context.Background(), parsed, []float64{0.5, 0.5}, []int{1}, Options{}); err == nil {
		t.Fatalf("expected error for label count mismatch")
	}
}

func TestProcess_LabelsAligned(t *testing.T) {
	parsed := instances(2)
	results, err := Process(context.Background(), parsed, []float64{0.9, 0.1}, []int{1, 0}, Options{})
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if results[0].Record.Label == nil || *results[0].Record.Label != 1 {
		t.Fatalf("label 0 = %v, want 1", results[0].Record.Label)
	}
	if results[1].Record.Label == nil || *results[1].Record.Label != 0 {
		t.Fatalf("label 1 = %v, want 0", results[1].Record.Label)
	}
}

func TestProcess_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Process(ctx, instances(100), make([]float64, 100), nil, Options{Workers: 2}); err == nil {
		t.Fatalf("expected context error")
	}
}
