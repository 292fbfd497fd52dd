package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats records the time and memory consumed by some phase of work, such
// as generating traces or checking constraints.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current time and memory
// allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log the time and memory consumed since this snapshot was taken, at debug
// level.
func (p *PerfStats) Log(phase string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	log.WithFields(log.Fields{
		"time":     time.Since(p.startTime).Round(time.Microsecond),
		"alloc_mb": (m.TotalAlloc - p.startMem) / 1024 / 1024,
		"gcs":      m.NumGC - p.startGc,
	}).Debugf("%s complete", phase)
}
