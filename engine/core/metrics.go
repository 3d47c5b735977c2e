package core

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/tristris/engine/containers"
	"github.com/spaghettifunk/tristris/engine/math"
)

// AVG_COUNT is the number of callback intervals averaged by FrameTime.
const AVG_COUNT = 30

// SAMPLE_INTERVAL_MS is how often the smoothed rate is recomputed.
const SAMPLE_INTERVAL_MS = 1000.0

// FrameRate is a lightweight frames-per-second indicator.
//
// Once per second the rate becomes 0.75*count + 0.25*rate, where count is the
// number of callbacks seen since the previous sample. The next sample is due
// one second after the sampling callback, so the window drifts with callback
// jitter and count is not divided by the real window length. The readout is
// an approximation, not a precise counter.
type FrameRate struct {
	count      int
	rate       float64
	nextSample float64

	lastTime   float64
	hasLast    bool
	frameTimes *containers.RingQueue[float64]
}

func NewFrameRate() *FrameRate {
	return &FrameRate{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Sample counts one callback at currentTime and reports whether the smoothed
// rate was recomputed by it.
func (f *FrameRate) Sample(currentTime float64) bool {
	if f.hasLast {
		f.frameTimes.Push(math.AtLeast(currentTime-f.lastTime, 0))
	}
	f.lastTime = currentTime
	f.hasLast = true

	sampled := false
	if currentTime > f.nextSample {
		f.rate = 0.75*float64(f.count) + 0.25*f.rate
		f.nextSample = currentTime + SAMPLE_INTERVAL_MS
		f.count = 0
		sampled = true
	}
	f.count++
	return sampled
}

// Reset zeroes the rate and the callback count. The sampling boundary is kept.
func (f *FrameRate) Reset() {
	f.rate = 0
	f.count = 0
	f.hasLast = false
	f.frameTimes.Clear()
}

func (f *FrameRate) Rate() float64 {
	return f.rate
}

// Count returns the callbacks counted in the current window.
func (f *FrameRate) Count() int {
	return f.count
}

func (f *FrameRate) NextSample() float64 {
	return f.nextSample
}

// FrameTime returns the average interval in milliseconds between the last
// AVG_COUNT callbacks.
func (f *FrameRate) FrameTime() float64 {
	values := f.frameTimes.Values()
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// FormatFrameRate renders the readout shown to the player, rounded to one
// decimal place.
func FormatFrameRate(rate float64) string {
	return fmt.Sprintf("FPS: %.1f", m.Round(rate*10)/10)
}
