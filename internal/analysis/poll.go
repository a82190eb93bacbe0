package analysis

import (
	"context"
	"fmt"
	"time"
)

// Wait polls the job until it reaches a terminal state or ctx is cancelled.
// onPoll, when non-nil, receives every observed status (for progress UIs).
// A Failed or Stopped terminal state is returned as an error.
func Wait(ctx context.Context, svc Service, name string, interval time.Duration, onPoll func(JobStatus)) (JobStatus, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := svc.Status(ctx, name)
		if err != nil {
			return JobStatus{}, fmt.Errorf("poll job %s: %w", name, err)
		}
		if onPoll != nil {
			onPoll(st)
		}

		switch st.State {
		case StateCompleted:
			return st, nil
		case StateFailed, StateStopped:
			msg := st.Message
			if msg == "" {
				msg = string(st.State)
			}
			return st, fmt.Errorf("job %s ended in state %s: %s", name, st.State, msg)
		}

		select {
		case <-ctx.Done():
			return JobStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
