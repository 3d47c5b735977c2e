package platform

import (
	"context"
	"time"

	"github.com/spaghettifunk/tristris/engine/core"
)

// Headless paces refreshes with a ticker and has no window. Timestamps come
// from a wall clock started by Run.
type Headless struct {
	*RefreshLoop
	width    int
	height   int
	interval time.Duration
	clock    *core.Clock
}

// NewHeadless creates a host refreshing rate times per second for a virtual
// display of width by height pixels.
func NewHeadless(width, height, rate int) *Headless {
	if rate <= 0 {
		rate = core.DefaultFrameRate
	}
	return &Headless{
		RefreshLoop: NewRefreshLoop(),
		width:       width,
		height:      height,
		interval:    time.Second / time.Duration(rate),
		clock:       core.NewClock(),
	}
}

func (h *Headless) Size() (int, int) {
	return h.width, h.height
}

func (h *Headless) Interval() time.Duration {
	return h.interval
}

// Run refreshes until ctx is done. It must be called from the goroutine that
// owns the engine.
func (h *Headless) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.clock.Start()
	defer h.clock.Stop()

	core.LogDebug("headless host running at %s per refresh", h.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.clock.Update()
			h.Refresh(h.clock.Elapsed())
		}
	}
}
