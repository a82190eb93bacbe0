package explain

import (
	"math"
	"testing"
)

func TestBuildRecord_ThresholdIsStrict(t *testing.T) {
	inst := Instance{Units: []string{"x"}, Attributions: []float64{0.1}}

	cases := []struct {
		prediction float64
		want       int
	}{
		{0.0, 0},
		{0.5, 0}, // exactly 0.5 predicts class 0
		{0.500001, 1},
		{1.0, 1},
	}
	for _, tc := range cases {
		rec, err := BuildRecord(0, inst, inst.Attributions, tc.prediction, 0, nil)
		if err != nil {
			t.Fatalf("BuildRecord(%v) error: %v", tc.prediction, err)
		}
		if rec.PredictedClass != tc.want {
			t.Fatalf("prediction %v → class %d, want %d", tc.prediction, rec.PredictedClass, tc.want)
		}
	}
}

func TestBuildRecord_TotalAndSign(t *testing.T) {
	inst := Instance{Units: []string{"a", "b", "c"}, Attributions: []float64{0.2, -0.8, 0.1}}

	rec, err := BuildRecord(0, inst, []float64{0.2, -0.8, 0.1}, 0.3, 0.01, nil)
	if err != nil {
		t.Fatalf("BuildRecord error: %v", err)
	}
	if rec.Positive {
		t.Fatalf("sum -0.5 should not be positive")
	}
	if got := rec.Total; math.Abs(got-(-0.5)) > 1e-12 {
		t.Fatalf("Total = %v, want -0.5", got)
	}

	// Sum of exactly zero is not positive.
	rec, err = BuildRecord(0, inst, []float64{0, 0, 0}, 0.3, 0, nil)
	if err != nil {
		t.Fatalf("BuildRecord error: %v", err)
	}
	if rec.Positive || rec.Total != 0 {
		t.Fatalf("zero total should yield Positive=false, Total=0; got %v, %v", rec.Positive, rec.Total)
	}
}

func TestBuildRecord_CarriesLabelAndDelta(t *testing.T) {
	inst := Instance{Units: []string{"x"}, Attributions: []float64{1}}
	label := 1
	rec, err := BuildRecord(0, inst, inst.Attributions, 0.8, 0.05, &label)
	if err != nil {
		t.Fatalf("BuildRecord error: %v", err)
	}
	if rec.Label == nil || *rec.Label != 1 {
		t.Fatalf("label not carried: %v", rec.Label)
	}
	if rec.Delta != 0.05 {
		t.Fatalf("delta not carried: %v", rec.Delta)
	}
}

func TestBuildRecord_ShapeMismatch(t *testing.T) {
	inst := Instance{Units: []string{"a", "b"}, Attributions: []float64{1, 2}}
	_, err := BuildRecord(3, inst, []float64{1}, 0.5, 0, nil)
	if !IsShapeMismatch(err) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}

	bad := Instance{Units: []string{"a", "b"}, Attributions: []float64{1}}
	_, err = BuildRecord(3, bad, []float64{1}, 0.5, 0, nil)
	if !IsShapeMismatch(err) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
}
