// Package profiler reports update rate, pose throughput and memory statistics through
// the engine logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-pose/common"
)

// gcRing is the length of runtime.MemStats.PauseNs.
const gcRing = 256

// Stats is one reporting interval's worth of measurements.
type Stats struct {
	UpdatesPerSec float64
	PosesPerSec   float64
	HeapMB        float64
	AllocRateMB   float64
	SysMB         float64
	GCCount       uint32
	LastPause     time.Duration
	MaxPause      time.Duration
}

// Profiler counts updates and evaluated poses and logs a Stats line once per interval.
// Not safe for concurrent use; the owner ticks it from its update goroutine.
type Profiler struct {
	updates  int
	poses    int
	since    time.Time
	interval time.Duration

	mem            runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a Profiler that reports once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		since:    time.Now(),
		interval: time.Second,
	}
}

// SetInterval changes how often Tick reports. Non-positive values report on every tick.
//
// Parameters:
//   - d: the reporting interval
func (p *Profiler) SetInterval(d time.Duration) {
	p.interval = max(d, 0)
}

// AddPoses records n player poses evaluated during the current update.
func (p *Profiler) AddPoses(n int) {
	p.poses += n
}

// Last returns the stats of the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick counts one update and, once the interval has elapsed, logs the interval's stats
// and starts a new interval.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.updates++
	now := time.Now()
	elapsed := now.Sub(p.since)
	if elapsed < p.interval {
		return false
	}

	p.last = p.collect(elapsed)
	common.LogInfo("profiler: UPS: %.2f | Poses/s: %.0f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %v, max: %v) | Sys: %.2f MB",
		p.last.UpdatesPerSec, p.last.PosesPerSec, p.last.HeapMB, p.last.AllocRateMB,
		p.last.GCCount, p.last.LastPause, p.last.MaxPause, p.last.SysMB)

	p.updates, p.poses = 0, 0
	p.since = now
	p.lastGCCount = p.last.GCCount
	p.lastTotalAlloc = p.mem.TotalAlloc
	return true
}

func (p *Profiler) collect(elapsed time.Duration) Stats {
	runtime.ReadMemStats(&p.mem)
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = 1
	}

	s := Stats{
		UpdatesPerSec: float64(p.updates) / secs,
		PosesPerSec:   float64(p.poses) / secs,
		HeapMB:        toMB(p.mem.Alloc),
		AllocRateMB:   toMB(p.mem.TotalAlloc-p.lastTotalAlloc) / secs,
		SysMB:         toMB(p.mem.Sys),
		GCCount:       p.mem.NumGC,
	}
	s.LastPause, s.MaxPause = gcPauses(&p.mem, p.lastGCCount)
	return s
}

// gcPauses returns the latest pause and the longest pause among collections numbered
// from since onwards, limited to what the pause ring still holds.
func gcPauses(mem *runtime.MemStats, since uint32) (last, longest time.Duration) {
	n := mem.NumGC
	if n == 0 {
		return 0, 0
	}
	last = time.Duration(mem.PauseNs[(n-1)%gcRing])
	if n-since > gcRing {
		since = n - gcRing
	}
	for i := since; i < n; i++ {
		longest = max(longest, time.Duration(mem.PauseNs[i%gcRing]))
	}
	return last, longest
}

func toMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
