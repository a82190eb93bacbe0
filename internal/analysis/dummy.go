package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// dummyResult is a small but shape-complete SHAP payload: two text instances
// with per-token attributions and deltas, the way a finished job reports them.
const dummyResult = `{"attributions":[{"attribution":[0.42],"description":{"partial_text":"absolutely loved","start_idx":0}},{"attribution":[0.13],"description":{"partial_text":"this film","start_idx":17}},{"attribution":[-0.05],"description":{"partial_text":"despite the pacing","start_idx":27}}],"delta":0.011}
{"attributions":[{"attribution":[-0.37],"description":{"partial_text":"a dull","start_idx":0}},{"attribution":[-0.21],"description":{"partial_text":"forgettable plot","start_idx":7}},{"attribution":[0.08],"description":{"partial_text":"nice score though","start_idx":24}}],"delta":0.027}
`

// DummyService is an in-memory Service for tests and --mode dummy runs. A
// submitted job reports InProgress for PollsUntilDone status calls, then
// Completed, and serves a canned SHAP payload.
type DummyService struct {
	// PollsUntilDone is how many Status calls report InProgress before the
	// job completes. Zero completes immediately.
	PollsUntilDone int

	// FailWith, when non-empty, makes jobs end in StateFailed with this
	// message instead of completing.
	FailWith string

	mu   sync.Mutex
	jobs map[string]*dummyJob
}

type dummyJob struct {
	spec  JobSpec
	polls int
}

func NewDummyService() *DummyService {
	return &DummyService{PollsUntilDone: 2}
}

func (d *DummyService) Submit(ctx context.Context, spec JobSpec) (Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.TrimSpace(spec.Name) == "" {
		spec.Name = "dummy-" + uuid.New().String()[:8]
	}
	if d.jobs == nil {
		d.jobs = make(map[string]*dummyJob)
	}
	if _, exists := d.jobs[spec.Name]; exists {
		return Job{}, fmt.Errorf("job %q already exists", spec.Name)
	}
	d.jobs[spec.Name] = &dummyJob{spec: spec}
	logf(spec.Name, "[dummy] submit analysis=%s", spec.Analysis)
	return Job{Name: spec.Name}, nil
}

func (d *DummyService) Status(ctx context.Context, name string) (JobStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	j, ok := d.jobs[name]
	if !ok {
		return JobStatus{}, &APIError{StatusCode: 404}
	}
	j.polls++
	if j.polls <= d.PollsUntilDone {
		return JobStatus{Name: name, State: StateInProgress}, nil
	}
	if d.FailWith != "" {
		return JobStatus{Name: name, State: StateFailed, Message: d.FailWith}, nil
	}
	return JobStatus{Name: name, State: StateCompleted}, nil
}

func (d *DummyService) Result(ctx context.Context, name string) (io.ReadCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	j, ok := d.jobs[name]
	if !ok {
		return nil, &APIError{StatusCode: 404}
	}
	if j.polls <= d.PollsUntilDone {
		return nil, fmt.Errorf("job %q has not completed", name)
	}
	return io.NopCloser(strings.NewReader(dummyResult)), nil
}
