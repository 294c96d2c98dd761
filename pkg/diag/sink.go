package diag

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Sink receives failures that are reported instead of returned.
type Sink interface {
	Report(source string, err error)
}

// LogSink writes reports to the global logger at warn level.
type LogSink struct{}

func (LogSink) Report(source string, err error) {
	log.Warn().Str("source", source).Err(err).Msg("suppressed failure")
}

type discard struct{}

func (discard) Report(string, error) {}

// Discard drops every report.
var Discard Sink = discard{}

// Report is one recorded failure.
type Report struct {
	Source string
	Err    error
}

// Recorder keeps reports in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) Report(source string, err error) {
	r.mu.Lock()
	r.reports = append(r.reports, Report{Source: source, Err: err})
	r.mu.Unlock()
}

// Reports returns a copy of everything recorded so far.
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}
