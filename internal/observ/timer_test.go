package observ

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	cur := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(5 * time.Millisecond)

	idx := timer.Begin(PhaseLoadTable)
	timer.End(idx, "3 constants")
	idx = timer.Begin(PhaseRewrite)
	timer.End(idx, "")

	report := timer.Report()
	require.Len(t, report.Phases, 2)
	assert.Equal(t, PhaseLoadTable, report.Phases[0].Name)
	assert.Equal(t, "3 constants", report.Phases[0].Note)
	assert.InDelta(t, 5.0, report.Phases[0].DurationMS, 0.001)
	assert.InDelta(t, 10.0, report.TotalMS, 0.001)
}

func TestTimerTrack(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)

	boom := errors.New("boom")
	err := timer.Track(PhaseCollect, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, timer.Track(PhaseResolve, func() (string, error) { return "ok", nil }))

	report := timer.Report()
	require.Len(t, report.Phases, 2)
	assert.Equal(t, "failed", report.Phases[0].Note)
	assert.Equal(t, "ok", report.Phases[1].Note)
}

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)
	timer.End(timer.Begin(PhaseRewrite), "2 files")

	out := timer.Summary()
	assert.True(t, strings.HasPrefix(out, "timings:\n"))
	assert.Contains(t, out, "rewrite")
	assert.Contains(t, out, "// 2 files")
	assert.Contains(t, out, "total")
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	// не должно паниковать
	timer.End(timer.Begin("x"), "")
	assert.Equal(t, Report{}, timer.Report())
	timer.End(99, "")
}
