package core

import (
	"time"

	"github.com/spaghettifunk/tristris/engine/math"
)

// DefaultFrameRate is the target number of simulation steps per second.
const DefaultFrameRate = 60

// stepEpsilon absorbs floating point drift when callbacks are spaced by
// exactly one step (1000/60 is not representable).
const stepEpsilon = 1e-6

// Clock measures wall time in milliseconds since Start.
type Clock struct {
	startTime time.Time
	started   bool
	elapsed   float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.started {
		c.elapsed = float64(time.Since(c.startTime)) / float64(time.Millisecond)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.started = true
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.started = false
}

// Elapsed returns the milliseconds measured by the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// FrameClock turns variable callback timestamps into a whole number of
// fixed-size simulation steps.
type FrameClock struct {
	prev     float64
	delta    float64
	step     float64
	maxSteps int

	lastSteps int
	overruns  uint64
	dropped   float64
}

// NewFrameClock creates a clock stepping at rate steps per second. At most
// rate steps are caught up per callback, i.e. one second of simulated time.
func NewFrameClock(rate int) *FrameClock {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return &FrameClock{
		step:     1000 / float64(rate),
		maxSteps: rate,
	}
}

// SetRate changes the step size and the catch-up budget. The backlog, the
// previous timestamp and the overrun counters are kept.
func (c *FrameClock) SetRate(rate int) {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	c.step = 1000 / float64(rate)
	c.maxSteps = rate
}

// Prime records t as the previous timestamp without accumulating time.
func (c *FrameClock) Prime(t float64) {
	c.prev = t
}

// Advance accumulates the time elapsed since the previous timestamp and calls
// update once per whole step, up to the catch-up budget. Once the budget is
// spent the remaining backlog is discarded. It returns the number of steps run.
func (c *FrameClock) Advance(currentTime float64, update func(dt float64)) int {
	c.delta += math.AtLeast(currentTime-c.prev, 0)
	c.prev = currentTime

	budget := c.maxSteps
	steps := 0
	for c.delta+stepEpsilon >= c.step && budget > 0 {
		update(c.step)
		c.delta = math.AtLeast(c.delta-c.step, 0)
		steps++
		budget--
		if budget == 0 {
			if c.delta+stepEpsilon >= c.step {
				c.overruns++
			}
			c.dropped += c.delta
			c.delta = 0
		}
	}
	c.lastSteps = steps
	return steps
}

// Step returns the fixed step duration in milliseconds.
func (c *FrameClock) Step() float64 {
	return c.step
}

// MaxSteps returns the catch-up budget per callback.
func (c *FrameClock) MaxSteps() int {
	return c.maxSteps
}

// Delta returns the accumulated, not yet simulated, milliseconds.
func (c *FrameClock) Delta() float64 {
	return c.delta
}

func (c *FrameClock) Previous() float64 {
	return c.prev
}

func (c *FrameClock) LastSteps() int {
	return c.lastSteps
}

// Overruns counts the callbacks that discarded at least one whole step.
func (c *FrameClock) Overruns() uint64 {
	return c.overruns
}

// DroppedMs is the total simulated time discarded by the catch-up guard.
func (c *FrameClock) DroppedMs() float64 {
	return c.dropped
}
