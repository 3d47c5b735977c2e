// Package platform provides display refresh hosts for the engine loop.
package platform

import (
	"slices"
	"sync"

	"github.com/kamstrup/intmap"

	"github.com/spaghettifunk/tristris/engine/core"
)

// RefreshLoop holds the callbacks waiting for the next display refresh and
// the tasks posted from other goroutines. Hosts embed it and call Refresh
// once per refresh on the host thread.
type RefreshLoop struct {
	nextID  core.CallbackID
	pending *intmap.Map[core.CallbackID, core.FrameCallback]

	mu    sync.Mutex
	tasks []func()
}

func NewRefreshLoop() *RefreshLoop {
	return &RefreshLoop{
		pending: intmap.New[core.CallbackID, core.FrameCallback](4),
	}
}

// RequestCallback runs fn once on the next refresh. Ids start at 1.
func (r *RefreshLoop) RequestCallback(fn core.FrameCallback) core.CallbackID {
	r.nextID++
	r.pending.Put(r.nextID, fn)
	return r.nextID
}

// CancelCallback drops a pending callback. Unknown or already fired ids are
// ignored.
func (r *RefreshLoop) CancelCallback(id core.CallbackID) {
	r.pending.Del(id)
}

// Pending returns the number of callbacks waiting for a refresh.
func (r *RefreshLoop) Pending() int {
	return r.pending.Len()
}

// Post queues fn to run on the host thread before the next refresh. Safe to
// call from any goroutine.
func (r *RefreshLoop) Post(fn func()) {
	r.mu.Lock()
	r.tasks = append(r.tasks, fn)
	r.mu.Unlock()
}

// Refresh runs posted tasks, then fires the callbacks that were pending when
// it started, in request order. Callbacks requested while firing wait for the
// next refresh. It returns the number of callbacks fired.
func (r *RefreshLoop) Refresh(timestamp float64) int {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = nil
	r.mu.Unlock()
	for _, task := range tasks {
		task()
	}

	ids := slices.Sorted(r.pending.Keys())
	fired := 0
	for _, id := range ids {
		fn, ok := r.pending.Get(id)
		if !ok {
			// cancelled by an earlier callback in this refresh
			continue
		}
		r.pending.Del(id)
		fn(timestamp)
		fired++
	}
	return fired
}
