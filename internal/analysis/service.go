// Package analysis talks to the managed explainability/bias service. The
// service owns all statistical computation (SHAP approximation, bias
// metrics); this package only submits job specifications, polls status and
// fetches the produced result payload.
package analysis

import (
	"context"
	"io"
)

// JobState is the lifecycle state reported by the service.
type JobState string

const (
	StateInProgress JobState = "InProgress"
	StateCompleted  JobState = "Completed"
	StateFailed     JobState = "Failed"
	StateStopped    JobState = "Stopped"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateStopped
}

// JobSpec describes one analysis job: which dataset to explain against which
// model, and how the service should slice the input into explainable units.
type JobSpec struct {
	Name string `json:"name" yaml:"name"`

	// Analysis selects the computation: "shap" or "bias".
	Analysis string `json:"analysis" yaml:"analysis"`

	// DatasetURI points at the input dataset (e.g. an object-store URI).
	DatasetURI string `json:"dataset_uri" yaml:"dataset_uri"`

	// ModelName is the hosted model/endpoint the service invokes while
	// perturbing features.
	ModelName string `json:"model_name" yaml:"model_name"`

	// Headers names the dataset columns; LabelHeader the ground-truth one.
	Headers     []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	LabelHeader string   `json:"label_header,omitempty" yaml:"label_header,omitempty"`

	// Granularity is the text unit the explanations are reported at:
	// token, sentence or paragraph. Empty for tabular datasets.
	Granularity string `json:"granularity,omitempty" yaml:"granularity,omitempty"`

	// Baseline is the replacement value used when perturbing a unit.
	Baseline string `json:"baseline,omitempty" yaml:"baseline,omitempty"`

	// Samples is the number of perturbed samples per instance. Zero lets
	// the service pick.
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty"`

	// Facet is the attribute bias metrics are computed against. Only used
	// when Analysis is "bias".
	Facet string `json:"facet,omitempty" yaml:"facet,omitempty"`
}

// Job identifies a submitted job.
type Job struct {
	Name string `json:"name"`
	ARN  string `json:"arn,omitempty"`
}

// JobStatus is a point-in-time view of a running job.
type JobStatus struct {
	Name    string   `json:"name"`
	State   JobState `json:"state"`
	Message string   `json:"message,omitempty"`
}

// Service is the capability the CLI needs from the managed analysis product.
type Service interface {
	// Submit starts a new analysis job.
	Submit(ctx context.Context, spec JobSpec) (Job, error)

	// Status reports the job's current lifecycle state.
	Status(ctx context.Context, name string) (JobStatus, error)

	// Result streams the completed job's explanation payload
	// (JSON Lines, one record per instance).
	Result(ctx context.Context, name string) (io.ReadCloser, error)
}
