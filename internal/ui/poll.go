package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// PollModel is the Bubble Tea model shown while an analysis job runs on the
// managed service. It displays the job name, a spinner, the last reported
// status and how many times the job has been polled.
type PollModel struct {
	spinner  spinner.Model
	jobName  string
	status   string
	polls    int
	started  time.Time
	done     bool
	err      error
	quitting bool
}

// NewPollModel creates a poll model for the named job.
func NewPollModel(jobName string) PollModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	return PollModel{
		spinner: s,
		jobName: jobName,
		status:  "Submitting",
		started: time.Now(),
	}
}

// Init initializes the model
func (m PollModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// PollMsg is sent on every status poll.
type PollMsg struct {
	Status string
}

// PollDoneMsg signals that the job reached a terminal state.
type PollDoneMsg struct {
	Err error
}

// Update handles messages
func (m PollModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PollMsg:
		m.polls++
		m.status = msg.Status
		return m, nil

	case PollDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the poll display
func (m PollModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder

	b.WriteString(Title.Render("Analysis job: " + m.jobName))
	b.WriteString("\n\n")

	elapsed := time.Since(m.started).Round(time.Second)
	if m.done {
		if m.err != nil {
			b.WriteString(ErrorBox.Render(GetCrossMark() + " " + m.err.Error()))
		} else {
			b.WriteString(Success.Render(fmt.Sprintf("✓ Completed after %s (%d polls)", elapsed, m.polls)))
		}
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" " + StepRunning.Render(m.status))
		b.WriteString(Dim.Render(fmt.Sprintf("  %s, %d polls", elapsed, m.polls)))
	}

	return tea.NewView(b.String())
}

// JobWatcher drives a PollModel without exposing Bubble Tea to the calling
// code. The analyze command feeds it from the polling loop's callback.
type JobWatcher struct {
	program *tea.Program
	mu      sync.Mutex
	running bool
}

// NewJobWatcher creates an idle watcher.
func NewJobWatcher() *JobWatcher {
	return &JobWatcher{}
}

// Start begins the poll display for the named job.
func (w *JobWatcher) Start(jobName string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.program = tea.NewProgram(NewPollModel(jobName), tea.WithoutSignalHandler())
	w.running = true

	go func() {
		w.program.Run()
	}()

	// Give the program a moment to start
	time.Sleep(50 * time.Millisecond)
}

// Report sends the latest job status to the display.
func (w *JobWatcher) Report(status string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.program == nil || !w.running {
		return
	}
	w.program.Send(PollMsg{Status: status})
}

// Complete marks the job as finished.
func (w *JobWatcher) Complete(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.program == nil || !w.running {
		return
	}
	w.program.Send(PollDoneMsg{Err: err})
	w.running = false

	// Give it time to render the final state
	time.Sleep(100 * time.Millisecond)
}
