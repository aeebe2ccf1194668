package jobsync

import "github.com/socialharvester/harvester/internal/api"

// PullLogAdapter delivers log entries that arrive inside status responses.
type PullLogAdapter struct {
	sink Sink
}

// NewPullLogAdapter creates an adapter writing to sink.
func NewPullLogAdapter(sink Sink) *PullLogAdapter {
	return &PullLogAdapter{sink: sink}
}

// Apply replaces the displayed log with entries. An empty log leaves the
// display as it is.
func (p *PullLogAdapter) Apply(entries []api.LogEntry) {
	if len(entries) == 0 {
		return
	}
	p.sink.ReplaceLog(append([]api.LogEntry(nil), entries...))
}
