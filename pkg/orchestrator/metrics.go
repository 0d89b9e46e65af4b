package orchestrator

import "sync/atomic"

// Metrics holds atomic run counters (spec §5: "atomic increments; no
// coordinated snapshots required").
type Metrics struct {
	filesScanned   atomic.Int64
	filesSkipped   atomic.Int64
	workerTimeouts atomic.Int64
	errors         atomic.Int64
}

func (m *Metrics) incScanned()   { m.filesScanned.Add(1) }
func (m *Metrics) incSkipped()   { m.filesSkipped.Add(1) }
func (m *Metrics) incTimeout()   { m.workerTimeouts.Add(1) }
func (m *Metrics) incError()     { m.errors.Add(1) }

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	FilesScanned   int64
	FilesSkipped   int64
	WorkerTimeouts int64
	Errors         int64
}

// Snapshot reads the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		FilesScanned:   m.filesScanned.Load(),
		FilesSkipped:   m.filesSkipped.Load(),
		WorkerTimeouts: m.workerTimeouts.Load(),
		Errors:         m.errors.Load(),
	}
}
