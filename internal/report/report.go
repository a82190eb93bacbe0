// Package report summarizes a processed explanation batch as a CycloneDX AI
// BOM: the analyzed model becomes the BOM's root component and its model
// card carries the aggregated attribution metrics. Bias metric values come
// from the analysis job; they are carried through, never computed here.
package report

import (
	"fmt"
	"math"
	"sort"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/analysis"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/explain"
)

// Importance is the global weight of one unit across a record batch.
type Importance struct {
	Unit  string
	Score float64 // mean absolute displayed attribution
}

// GlobalImportance aggregates per-instance attributions into one score per
// unit: the mean of the unit's absolute displayed attributions over all
// records mentioning it. Sorted descending, ties by unit name.
func GlobalImportance(records []explain.Record) []Importance {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, rec := range records {
		for i, unit := range rec.Units {
			sums[unit] += math.Abs(rec.Attributions[i])
			counts[unit]++
		}
	}

	out := make([]Importance, 0, len(sums))
	for unit, sum := range sums {
		out = append(out, Importance{Unit: unit, Score: sum / float64(counts[unit])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// Accuracy is the fraction of records whose predicted class matches the
// ground truth. The second return is false when no record carries a label.
func Accuracy(records []explain.Record) (float64, bool) {
	correct, labeled := 0, 0
	for _, rec := range records {
		if rec.Label == nil {
			continue
		}
		labeled++
		if *rec.Label == rec.PredictedClass {
			correct++
		}
	}
	if labeled == 0 {
		return 0, false
	}
	return float64(correct) / float64(labeled), true
}

// Build assembles the CycloneDX BOM for one analysis run. topK caps how many
// importance entries land in the model card (0 = all).
func Build(spec analysis.JobSpec, records []explain.Record, topK int) *cdx.BOM {
	importance := GlobalImportance(records)
	if topK > 0 && topK < len(importance) {
		importance = importance[:topK]
	}

	metrics := make([]cdx.MLPerformanceMetric, 0, len(importance)+1)
	if acc, ok := Accuracy(records); ok {
		metrics = append(metrics, cdx.MLPerformanceMetric{
			Type:  "accuracy",
			Value: fmt.Sprintf("%.4f", acc),
			Slice: "explained instances",
		})
	}
	for _, imp := range importance {
		metrics = append(metrics, cdx.MLPerformanceMetric{
			Type:  "mean-absolute-attribution",
			Value: fmt.Sprintf("%.6f", imp.Score),
			Slice: imp.Unit,
		})
	}

	card := &cdx.MLModelCard{
		ModelParameters: &cdx.MLModelParameters{
			Task: spec.Analysis,
			Approach: &cdx.MLModelParametersApproach{
				Type: cdx.MLModelParametersApproachTypeSupervised,
			},
			Datasets: &[]cdx.MLDatasetChoice{{Ref: spec.DatasetURI}},
		},
		QuantitativeAnalysis: &cdx.MLQuantitativeAnalysis{
			PerformanceMetrics: &metrics,
		},
	}

	if spec.Facet != "" {
		card.Considerations = &cdx.MLModelCardConsiderations{
			FairnessAssessments: &[]cdx.MLModelCardFairnessAssessment{{
				GroupAtRisk:        spec.Facet,
				MitigationStrategy: "reviewed via managed bias analysis job " + spec.Name,
			}},
		}
	}

	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()
	bom.Metadata = &cdx.Metadata{
		Component: &cdx.Component{
			Type:      cdx.ComponentTypeMachineLearningModel,
			Name:      spec.ModelName,
			ModelCard: card,
		},
	}
	return bom
}
