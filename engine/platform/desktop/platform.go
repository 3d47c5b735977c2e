// Package desktop hosts the engine in a glfw window paced to the monitor
// refresh rate.
package desktop

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform is a glfw window driving the refresh callbacks. It delivers
// input, resize and close events and shows the readouts in the title bar.
// The window is created without a client API, so the engine surface is not
// presented in it; run headless with telemetry to watch a session.
type Platform struct {
	*platform.RefreshLoop
	Window *glfw.Window

	clock    *core.Clock
	interval time.Duration
}

func New() (*Platform, error) {
	return &Platform{
		RefreshLoop: platform.NewRefreshLoop(),
		Window:      nil,
		clock:       core.NewClock(),
	}, nil
}

// Startup opens the window. maxRate caps the refresh pacing when the monitor
// reports a faster mode; zero means the monitor rate.
func (p *Platform) Startup(applicationName string, x, y, width, height uint32, maxRate int) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetSizeCallback(sizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	rate := core.DefaultFrameRate
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		if mode := monitor.GetVideoMode(); mode != nil && mode.RefreshRate > 0 {
			rate = mode.RefreshRate
		}
	}
	if maxRate > 0 && rate > maxRate {
		rate = maxRate
	}
	p.interval = time.Second / time.Duration(rate)
	core.LogInfo("window %dx%d refreshing at %d Hz", width, height, rate)

	return nil
}

func (p *Platform) Size() (int, int) {
	if p.Window == nil {
		return 0, 0
	}
	return p.Window.GetSize()
}

func (p *Platform) SetTitle(title string) {
	if p.Window != nil {
		p.Window.SetTitle(title)
	}
}

// PumpMessages processes pending window events. It returns false once the
// window has been asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// Run pumps window events and refreshes until the window closes or ctx is
// done. Must be called from the main goroutine.
func (p *Platform) Run(ctx context.Context) error {
	if p.Window == nil {
		return core.ErrNotInitialized
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.clock.Start()
	defer p.clock.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.PumpMessages() {
				return nil
			}
			p.clock.Update()
			p.Refresh(p.clock.Elapsed())
		}
	}
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// TitleBar shows the application name, its version and the frame rate
// readout in the window title.
type TitleBar struct {
	platform *Platform
	name     string

	mu        sync.Mutex
	version   string
	frameRate string
}

func NewTitleBar(p *Platform, name string) *TitleBar {
	return &TitleBar{platform: p, name: name}
}

// Version returns the sink for the version string.
func (t *TitleBar) Version() core.TextSink {
	return titleSlot{bar: t, version: true}
}

// FrameRate returns the sink for the frame rate readout.
func (t *TitleBar) FrameRate() core.TextSink {
	return titleSlot{bar: t}
}

func (t *TitleBar) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	title := t.name
	if t.version != "" {
		title = fmt.Sprintf("%s v%s", title, t.version)
	}
	if t.frameRate != "" {
		title = fmt.Sprintf("%s | %s", title, t.frameRate)
	}
	return title
}

type titleSlot struct {
	bar     *TitleBar
	version bool
}

func (s titleSlot) SetText(text string) {
	s.bar.mu.Lock()
	if s.version {
		s.bar.version = text
	} else {
		s.bar.frameRate = text
	}
	s.bar.mu.Unlock()
	s.bar.platform.SetTitle(s.bar.String())
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	core.InputProcessKey(code, action == glfw.Press)
}

func sizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(width),
			WindowHeight: uint32(height),
		},
	})
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	if key >= glfw.KeyA && key <= glfw.KeyZ {
		return core.KEY_A + core.KeyCode(key-glfw.KeyA), true
	}
	switch key {
	case glfw.KeySpace:
		return core.KEY_SPACE, true
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeyEnter:
		return core.KEY_ENTER, true
	case glfw.KeyTab:
		return core.KEY_TAB, true
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	case glfw.KeyPause:
		return core.KEY_PAUSE, true
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		return core.KEY_SHIFT, true
	}
	return 0, false
}
