package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tristris/engine/core"
)

func TestClock(t *testing.T) {
	c := core.NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed(), "not started")

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	elapsed := c.Elapsed()
	assert.GreaterOrEqual(t, elapsed, 5.0)

	c.Stop()
	time.Sleep(2 * time.Millisecond)
	c.Update()
	assert.Equal(t, elapsed, c.Elapsed(), "stopped clocks keep their time")
}

func TestFrameClockDefaults(t *testing.T) {
	c := core.NewFrameClock(0)
	assert.Equal(t, 1000.0/60, c.Step())
	assert.Equal(t, 60, c.MaxSteps())

	c = core.NewFrameClock(30)
	assert.Equal(t, 1000.0/30, c.Step())
	assert.Equal(t, 30, c.MaxSteps())
}

func TestFrameClockAdvance(t *testing.T) {
	c := core.NewFrameClock(60)
	step := c.Step()
	c.Prime(1000)

	var deltas []float64
	record := func(dt float64) { deltas = append(deltas, dt) }

	assert.Zero(t, c.Advance(1010, record))
	assert.InDelta(t, 10, c.Delta(), 1e-9)
	assert.Equal(t, 1010.0, c.Previous())

	assert.Equal(t, 2, c.Advance(1040, record))
	assert.Equal(t, []float64{step, step}, deltas)
	assert.Equal(t, 2, c.LastSteps())
	assert.InDelta(t, 40-2*step, c.Delta(), 1e-9)
}

func TestFrameClockExactSpacing(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(0)

	total := 0
	for i := 1; i <= 10000; i++ {
		n := c.Advance(float64(i)*c.Step(), func(float64) {})
		assert.Equal(t, 1, n, "callback %d", i)
		total += n
	}
	assert.Equal(t, 10000, total)
	assert.Zero(t, c.Overruns())
}

func TestFrameClockClampsBackwardsTime(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(500)

	assert.Zero(t, c.Advance(100, func(float64) {}))
	assert.Zero(t, c.Delta())
	assert.Equal(t, 100.0, c.Previous())
}

func TestFrameClockCatchUpBudget(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(0)

	steps := c.Advance(10000, func(float64) {})
	assert.Equal(t, 60, steps)
	assert.Zero(t, c.Delta())
	assert.Equal(t, uint64(1), c.Overruns())
	assert.InDelta(t, 9000, c.DroppedMs(), 1e-6)
}

func TestFrameClockBudgetExactlySpent(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(0)

	// one second and half a step: the budget runs out but no whole step is
	// lost
	steps := c.Advance(1000+c.Step()/2, func(float64) {})
	assert.Equal(t, 60, steps)
	assert.Zero(t, c.Delta())
	assert.Zero(t, c.Overruns())
	assert.InDelta(t, c.Step()/2, c.DroppedMs(), 1e-6)
}

func TestFrameClockPrimeKeepsBacklog(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(0)
	c.Advance(10, func(float64) {})

	c.Prime(5000)
	assert.InDelta(t, 10, c.Delta(), 1e-9)
	assert.Equal(t, 1, c.Advance(5007, func(float64) {}))
}

func TestFrameClockSetRateKeepsCounters(t *testing.T) {
	c := core.NewFrameClock(60)
	c.Prime(0)
	c.Advance(10000, func(float64) {})
	c.Advance(10010, func(float64) {})

	c.SetRate(30)
	assert.Equal(t, 1000.0/30, c.Step())
	assert.Equal(t, 30, c.MaxSteps())
	assert.Equal(t, uint64(1), c.Overruns())
	assert.InDelta(t, 9000, c.DroppedMs(), 1e-6)
	assert.InDelta(t, 10, c.Delta(), 1e-9)
	assert.Equal(t, 10010.0, c.Previous())

	var deltas []float64
	c.Advance(10035, func(dt float64) { deltas = append(deltas, dt) })
	assert.Equal(t, []float64{1000.0 / 30}, deltas)

	c.SetRate(0)
	assert.Equal(t, core.DefaultFrameRate, c.MaxSteps())
}
