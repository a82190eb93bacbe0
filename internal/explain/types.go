// Package explain post-processes per-instance feature attributions produced
// by a managed explainability job into display-ready records.
//
// The pipeline per instance is: parse → normalize/select → build record.
// Every step is a pure function over the instance's own data, so instances
// can be processed in any order or concurrently with identical results.
package explain

// Instance is one explained row of the input dataset: an ordered sequence of
// (unit, attribution) pairs. A unit is a token, sentence, paragraph or
// tabular feature name, depending on the granularity the explainability job
// ran at. Order reflects the unit's position in the source text or the
// feature list.
type Instance struct {
	Units        []string
	Attributions []float64
}

// Record is the display-ready aggregate for one instance. It is created
// fresh at render time and never mutated afterwards.
type Record struct {
	Units        []string  `json:"units"`
	Attributions []float64 `json:"attributions"`

	// Prediction is the model's score for the instance, in [0,1].
	Prediction float64 `json:"prediction"`

	// PredictedClass is 1 when Prediction is strictly above 0.5, else 0.
	PredictedClass int `json:"predicted_class"`

	// Label is the ground-truth class, when a label source was supplied.
	Label *int `json:"label,omitempty"`

	// Delta is the explainability method's confidence/delta value for the
	// instance, carried through for display.
	Delta float64 `json:"delta"`

	// Positive reports whether the displayed attributions sum to a value
	// strictly above zero.
	Positive bool `json:"positive"`

	// Total is the sum of the displayed attributions. May be exactly 0.
	Total float64 `json:"total"`
}
