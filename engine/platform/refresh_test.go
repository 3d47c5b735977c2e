package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/platform"
)

func TestRefreshFiresInRequestOrder(t *testing.T) {
	host := platform.NewManual(320, 240)

	var order []int
	var stamps []float64
	for i := 1; i <= 3; i++ {
		i := i
		host.RequestCallback(func(ts float64) {
			order = append(order, i)
			stamps = append(stamps, ts)
		})
	}
	require.Equal(t, 3, host.Pending())

	assert.Equal(t, 3, host.Fire(16))
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, []float64{16, 16, 16}, stamps)
	assert.Zero(t, host.Pending())
	assert.Zero(t, host.Fire(32), "callbacks run once")
}

func TestRefreshDefersCallbacksRequestedWhileFiring(t *testing.T) {
	host := platform.NewManual(320, 240)

	var seen []float64
	var loop core.FrameCallback
	loop = func(ts float64) {
		seen = append(seen, ts)
		host.RequestCallback(loop)
	}
	host.RequestCallback(loop)

	host.Fire(10)
	host.Fire(20)
	assert.Equal(t, []float64{10, 20}, seen)
	assert.Equal(t, 1, host.Pending())
}

func TestRefreshCancel(t *testing.T) {
	host := platform.NewManual(320, 240)

	fired := false
	id := host.RequestCallback(func(float64) { fired = true })
	host.CancelCallback(id)
	host.CancelCallback(id)
	host.CancelCallback(core.CallbackID(999))

	assert.Zero(t, host.Fire(10))
	assert.False(t, fired)
}

func TestRefreshCancelFromEarlierCallback(t *testing.T) {
	host := platform.NewManual(320, 240)

	var second core.CallbackID
	secondFired := false
	host.RequestCallback(func(float64) { host.CancelCallback(second) })
	second = host.RequestCallback(func(float64) { secondFired = true })

	assert.Equal(t, 1, host.Fire(10))
	assert.False(t, secondFired)
}

func TestPostedTasksRunBeforeCallbacks(t *testing.T) {
	host := platform.NewManual(320, 240)

	var events []string
	host.RequestCallback(func(float64) { events = append(events, "callback") })

	done := make(chan struct{})
	go func() {
		host.Post(func() { events = append(events, "task") })
		close(done)
	}()
	<-done

	host.Fire(10)
	assert.Equal(t, []string{"task", "callback"}, events)
}

func TestManualSize(t *testing.T) {
	host := platform.NewManual(320, 240)
	w, h := host.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)

	host.SetSize(640, 480)
	w, h = host.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestFireEvery(t *testing.T) {
	host := platform.NewManual(1, 1)

	var seen []float64
	var loop core.FrameCallback
	loop = func(ts float64) {
		seen = append(seen, ts)
		host.RequestCallback(loop)
	}
	host.RequestCallback(loop)

	last := host.FireEvery(100, 10, 4)
	assert.Equal(t, 130.0, last)
	assert.Equal(t, []float64{100, 110, 120, 130}, seen)
}

func TestHeadlessRuns(t *testing.T) {
	host := platform.NewHeadless(64, 48, 200)
	assert.Equal(t, 5*time.Millisecond, host.Interval())

	stamps := make(chan float64, 64)
	var loop core.FrameCallback
	loop = func(ts float64) {
		select {
		case stamps <- ts:
		default:
		}
		host.RequestCallback(loop)
	}
	host.RequestCallback(loop)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- host.Run(ctx) }()

	first := <-stamps
	second := <-stamps
	cancel()
	require.NoError(t, <-errc)

	assert.GreaterOrEqual(t, second, first)
	w, h := host.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}
