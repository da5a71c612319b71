package coordinator

import (
	"fmt"

	"github.com/soyeahso/adlad/internal/logging"
)

// Reporter is the diagnostic sink for plugin failures. Failures never reach
// the caller of an ad request; they are handed to the Reporter instead.
type Reporter interface {
	Report(pluginName, hook string, err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(pluginName, hook string, err error)

// Report calls f.
func (f ReporterFunc) Report(pluginName, hook string, err error) {
	f(pluginName, hook, err)
}

// LogReporter writes plugin failures to the error log.
type LogReporter struct {
	log *logging.Logger
}

// NewLogReporter creates a reporter logging through log.
func NewLogReporter(log *logging.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Report logs err together with the offending plugin.
func (r *LogReporter) Report(pluginName, hook string, err error) {
	r.log.Error().
		Err(err).
		Str("plugin", pluginName).
		Str("hook", hook).
		Msg(Message(pluginName, hook))
}

// Message is the human readable description of a plugin failure.
func Message(pluginName, hook string) string {
	switch hook {
	case hookShowFullScreen, hookShowRewarded:
		return fmt.Sprintf("An error occurred while trying to display an ad from the %q plugin:", pluginName)
	default:
		return fmt.Sprintf("An error occurred while calling %s on the %q plugin:", hook, pluginName)
	}
}

// PanicError wraps a panic value that is not an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("plugin panicked: %v", e.Value)
}
