package logging

import (
	"fmt"
	"io"
	"strings"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<Prefix> job=<jobName> <formattedMessage>\n
//
// where <jobName> is trimmed and defaults to "(unknown)".
type Logger struct {
	Writer io.Writer

	PrefixText string

	// OmitJob controls whether the job name field is written.
	// When false (default), output includes: "job=<name>".
	OmitJob bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(jobName string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitJob {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	j := strings.TrimSpace(jobName)
	if j == "" {
		j = "(unknown)"
	}
	fmt.Fprintf(l.Writer, "%s job=%s %s\n", prefix, j, msg)
}
