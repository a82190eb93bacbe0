package analysis

import (
	"io"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/logging"
)

var logger = &logging.Logger{PrefixText: "Analysis:"}

// SetLogger sets an optional destination for analysis service logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(jobName string, format string, args ...any) {
	logger.Logf(jobName, format, args...)
}
