package profiler

import (
	"bytes"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/stretchr/testify/assert"
)

func TestProfilerTick(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogOutput(&buf)
	t.Cleanup(func() { common.SetLogOutput(io.Discard) })

	p := NewProfiler()
	p.SetInterval(time.Hour)
	p.AddPoses(10)
	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.Empty(t, buf.String())

	p.SetInterval(0)
	p.AddPoses(5)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), "profiler: UPS")
	assert.Contains(t, buf.String(), "Poses/s")
	assert.Greater(t, p.Last().UpdatesPerSec, 0.0)
	assert.Greater(t, p.Last().PosesPerSec, 0.0)
	assert.Equal(t, 0, p.updates)
	assert.Equal(t, 0, p.poses)
}

func TestGCPauses(t *testing.T) {
	var mem runtime.MemStats
	last, longest := gcPauses(&mem, 0)
	assert.Zero(t, last)
	assert.Zero(t, longest)

	mem.NumGC = 3
	mem.PauseNs[0] = 500
	mem.PauseNs[1] = 2000
	mem.PauseNs[2] = 1000
	last, longest = gcPauses(&mem, 0)
	assert.Equal(t, 1000*time.Nanosecond, last)
	assert.Equal(t, 2000*time.Nanosecond, longest)

	_, longest = gcPauses(&mem, 2)
	assert.Equal(t, 1000*time.Nanosecond, longest)
}
