package explain

import (
	"math"
	"sort"
)

// Normalize rescales attributions so the largest absolute value becomes 1.
// Relative ordering and signs are untouched, which makes the operation
// idempotent. An all-zero vector is returned unchanged rather than divided
// by zero. The input slice is never mutated.
func Normalize(attributions []float64) []float64 {
	out := make([]float64, len(attributions))
	copy(out, attributions)

	var denom float64
	for _, a := range attributions {
		if abs := math.Abs(a); abs > denom {
			denom = abs
		}
	}
	if denom == 0 {
		return out
	}
	for i := range out {
		out[i] /= denom
	}
	return out
}

// SelectSalient zeroes out everything but the top-k most salient positions
// of the attribution vector, where k = floor(fraction * len).
//
// Salience is ranked on a derived vector: when the prediction is below 0.5
// the attributions are negated first, so salience always means evidence
// toward the predicted class from the model's own perspective. When
// matchToPred is false the ranking uses absolute values instead, making
// salience class-agnostic. The displayed values are always taken from the
// original vector, not the ranking one.
//
// fraction >= 1 disables filtering; fraction <= 0 yields an all-zero vector
// (k = 0 is valid). Ties rank by original index order, stable. The input
// slice is never mutated.
func SelectSalient(attributions []float64, prediction, fraction float64, matchToPred bool) []float64 {
	out := make([]float64, len(attributions))
	copy(out, attributions)
	if len(out) == 0 || fraction >= 1 {
		return out
	}

	k := int(math.Floor(fraction * float64(len(out))))
	if k < 0 {
		k = 0
	}

	ranking := make([]float64, len(attributions))
	copy(ranking, attributions)
	if prediction < 0.5 {
		for i := range ranking {
			ranking[i] = -ranking[i]
		}
	}
	if !matchToPred {
		for i := range ranking {
			ranking[i] = math.Abs(ranking[i])
		}
	}

	order := make([]int, len(ranking))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranking[order[i]] > ranking[order[j]]
	})

	keep := make(map[int]struct{}, k)
	for _, i := range order[:k] {
		keep[i] = struct{}{}
	}
	for i := range out {
		if _, ok := keep[i]; !ok {
			out[i] = 0
		}
	}
	return out
}
