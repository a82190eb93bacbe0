// Package predict invokes a hosted inference endpoint and reduces its
// response to one scalar score per instance, which is all the explanation
// pipeline needs.
package predict

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Predictor scores a batch of raw instances. Implementations must return
// exactly one score per instance, index-aligned.
type Predictor interface {
	Predict(ctx context.Context, instances []string) ([]float64, error)
}

// EndpointPredictor invokes an HTTP inference endpoint. Instances are posted
// as CSV lines (the hosted endpoint's batch format) and the response is read
// back as one numeric score per line.
type EndpointPredictor struct {
	Client      *http.Client
	EndpointURL string // required
}

func (p *EndpointPredictor) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

func (p *EndpointPredictor) Predict(ctx context.Context, instances []string) ([]float64, error) {
	if len(instances) == 0 {
		return nil, nil
	}

	body := strings.Join(instances, "\n")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(p.EndpointURL), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Accept", "text/csv")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read endpoint response: %w", err)
	}

	scores, err := parseScores(string(raw))
	if err != nil {
		return nil, err
	}
	if len(scores) != len(instances) {
		return nil, fmt.Errorf("endpoint returned %d scores for %d instances", len(scores), len(instances))
	}
	return scores, nil
}

func parseScores(raw string) ([]float64, error) {
	var scores []float64
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		// Multi-output endpoints return "label,score"; the score is the
		// last field either way.
		fields := strings.Split(line, ",")
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[len(fields)-1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint score %q: %w", line, err)
		}
		scores = append(scores, v)
	}
	return scores, nil
}

// ConstantPredictor returns the same score for every instance. Useful in
// tests and dummy runs.
type ConstantPredictor struct {
	Score float64
}

func (p *ConstantPredictor) Predict(ctx context.Context, instances []string) ([]float64, error) {
	scores := make([]float64, len(instances))
	for i := range scores {
		scores[i] = p.Score
	}
	return scores, nil
}
