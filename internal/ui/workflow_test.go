package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestWorkflow_FinalRenderShowsOutcomes(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWorkflow(&buf)

	parse := wf.AddTask("Parsing explanations")
	process := wf.AddTask("Processing instances")
	skipped := wf.AddTask("Writing report")

	wf.Start()
	wf.StartTask(parse, "")
	wf.CompleteTask(parse, "5 instance(s)")
	wf.StartTask(process, "")
	wf.FailTask(process, "instance 3: shape mismatch")
	wf.SkipTask(skipped, "no output requested")
	wf.Stop()

	out := buf.String()
	for _, want := range []string{
		"Parsing explanations",
		"5 instance(s)",
		"Processing instances",
		"instance 3: shape mismatch",
		"Writing report",
		"no output requested",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("final render missing %q:\n%s", want, out)
		}
	}
}

func TestWorkflow_StopWithoutStartIsNoop(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWorkflow(&buf)
	wf.AddTask("idle")
	wf.Stop()

	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestWorkflow_OutOfRangeIndexIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWorkflow(&buf)
	wf.CompleteTask(3, "x")
	wf.FailTask(-1, "y")
}
