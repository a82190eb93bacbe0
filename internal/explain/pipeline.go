package explain

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options control the per-instance post-processing.
type Options struct {
	// Normalize rescales each instance's attributions to a max absolute
	// value of 1 before anything else.
	Normalize bool

	// SalienceFraction keeps only the top floor(f*len) most salient
	// positions per instance, for 0 < f < 1. Zero (unset) and 1 both mean
	// no filtering. A small positive f may still floor to k=0, which
	// legitimately zeroes out the whole vector.
	SalienceFraction float64

	// MatchToPred ranks salience as evidence toward the predicted class.
	// When false, ranking uses absolute importance instead.
	MatchToPred bool

	// Workers caps the number of instances processed concurrently.
	// Zero means one worker per CPU.
	Workers int
}

// Result is the outcome for one instance, index-aligned with the input.
// Exactly one of Record/Err is meaningful.
type Result struct {
	Record Record
	Err    error
}

// Process post-processes a parsed batch. Instances carry no shared state, so
// they are fanned out across workers; results land at the instance's input
// index, making the output independent of scheduling order. A bad instance
// records its error and is skipped, the rest of the batch is unaffected.
//
// predictions must be index-aligned with parsed. labels may be nil (no
// ground truth) or index-aligned.
func Process(ctx context.Context, parsed []Parsed, predictions []float64, labels []int, opts Options) ([]Result, error) {
	if len(predictions) != len(parsed) {
		return nil, fmt.Errorf("%d instances but %d predictions", len(parsed), len(predictions))
	}
	if labels != nil && len(labels) != len(parsed) {
		return nil, fmt.Errorf("%d instances but %d labels", len(parsed), len(labels))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(parsed))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range parsed {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var label *int
			if labels != nil {
				label = &labels[i]
			}
			results[i] = processOne(i, parsed[i], predictions[i], label, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processOne(index int, p Parsed, prediction float64, label *int, opts Options) Result {
	if p.Err != nil {
		return Result{Err: p.Err}
	}
	inst := p.Instance
	if len(inst.Units) != len(inst.Attributions) {
		return Result{Err: &ShapeMismatchError{Index: index, Units: len(inst.Units), Attributions: len(inst.Attributions)}}
	}

	displayed := inst.Attributions
	if opts.Normalize {
		displayed = Normalize(displayed)
	}
	if f := opts.SalienceFraction; f > 0 && f < 1 {
		displayed = SelectSalient(displayed, prediction, f, opts.MatchToPred)
	}

	rec, err := BuildRecord(index, inst, displayed, prediction, p.Delta, label)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Record: rec}
}
