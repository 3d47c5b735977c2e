package engine

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete, the loop is not scheduled
	EngineStageInitialized
	// Engine loop is scheduled on the host
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// FrameStats is a snapshot of the loop bookkeeping.
type FrameStats struct {
	Session     string  `json:"session"`
	State       string  `json:"state"`
	Rate        float64 `json:"rate"`
	FrameTimeMs float64 `json:"frame_time_ms"`
	LastSteps   int     `json:"last_steps"`
	PendingMs   float64 `json:"pending_ms"`
	Overruns    uint64  `json:"overruns"`
	DroppedMs   float64 `json:"dropped_ms"`
	Callbacks   uint64  `json:"callbacks"`
	Updates     uint64  `json:"updates"`
	Draws       uint64  `json:"draws"`
}

type options struct {
	frameRateSinks TextSinks
	versionSinks   TextSinks
	sampleHooks    []func(FrameStats)
	quitHandlers   []func()
	overlay        *renderer.Overlay
}

type Option func(*options)

// WithFrameRateSink adds sinks for the "FPS: n.n" readout.
func WithFrameRateSink(sinks ...core.TextSink) Option {
	return func(o *options) {
		o.frameRateSinks = append(o.frameRateSinks, sinks...)
	}
}

// WithVersionSink adds sinks for the application version string.
func WithVersionSink(sinks ...core.TextSink) Option {
	return func(o *options) {
		o.versionSinks = append(o.versionSinks, sinks...)
	}
}

// WithSampleHook calls fn with fresh stats every time the frame rate is
// sampled, about once a second.
func WithSampleHook(fn func(FrameStats)) Option {
	return func(o *options) {
		o.sampleHooks = append(o.sampleHooks, fn)
	}
}

// WithQuitHandler calls fn once the engine has stopped on a quit event.
func WithQuitHandler(fn func()) Option {
	return func(o *options) {
		o.quitHandlers = append(o.quitHandlers, fn)
	}
}

// WithOverlay draws the overlay on top of every frame.
func WithOverlay(overlay *renderer.Overlay) Option {
	return func(o *options) {
		o.overlay = overlay
	}
}

// Engine runs the active state of the game machine at a fixed timestep on
// the display refresh callbacks of its host.
type Engine struct {
	currentStage Stage
	session      uuid.UUID
	log          *log.Logger

	gameInstance *Game
	config       *ApplicationConfig
	host         Host
	window       Window
	machine      *fsm.Machine[State]
	surface      *renderer.Surface

	clock     *core.FrameClock
	frameRate *core.FrameRate

	frameRateSink core.TextSink
	versionSink   core.TextSink
	sampleHooks   []func(FrameStats)
	quitHandlers  []func()
	overlay       *renderer.Overlay

	isRunning  bool
	callbackID core.CallbackID
	// run changes on every Start and Stop so a callback can tell whether
	// the loop it belongs to is still the current one.
	run uint64

	ownsEvents bool

	callbacks uint64
	updates   uint64
	draws     uint64
}

// New builds the machine from the game definition and prepares the loop.
// Configuration errors are returned and must stop the application.
func New(g *Game, host Host, window Window, opts ...Option) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("%w: no game config", core.ErrInvalidConfig)
	}
	if host == nil || window == nil {
		return nil, fmt.Errorf("engine needs a host and a window")
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.frameRateSinks) == 0 {
		o.frameRateSinks = TextSinks{core.LogSink{Name: "frame rate"}}
	}
	if len(o.versionSinks) == 0 {
		o.versionSinks = TextSinks{core.LogSink{Name: "version"}}
	}

	session := uuid.New()
	e := &Engine{
		currentStage:  EngineStageUninitialized,
		session:       session,
		log:           core.LogWith("session", session.String()),
		gameInstance:  g,
		config:        g.ApplicationConfig,
		host:          host,
		window:        window,
		surface:       renderer.NewSurface(0, 0),
		clock:         core.NewFrameClock(g.ApplicationConfig.Graphics.MaxFrameRate),
		frameRate:     core.NewFrameRate(),
		frameRateSink: o.frameRateSinks,
		versionSink:   o.versionSinks,
		sampleHooks:   o.sampleHooks,
		quitHandlers:  o.quitHandlers,
		overlay:       o.overlay,
	}

	machine, err := fsm.Build(g.Definition, g.ApplicationConfig.Debug, g.States, fsm.WithObserver(e.onTransition))
	if err != nil {
		return nil, err
	}
	e.machine = machine
	e.log.Info("machine ready", "states", machine.States(), "initial", machine.Current())

	return e, nil
}

// Initialize hooks the engine to the system events, shows the version and
// sizes the surface.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return nil
	}

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// the host may have brought the event system up already
	e.ownsEvents = core.EventSystemInitialize()
	if !e.ownsEvents {
		e.log.Debug("event system already initialized")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onQuit)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	e.versionSink.SetText(e.config.Version)
	e.Resize()

	e.currentStage = EngineStageInitialized
	return nil
}

// Start schedules a priming callback that records the refresh timestamp as
// the previous time and then schedules the loop. This keeps the interval
// between an arbitrary "now" and the first refresh out of the simulation.
func (e *Engine) Start() error {
	switch {
	case e.currentStage == EngineStageUninitialized || e.currentStage == EngineStageShuttingDown:
		return core.ErrNotInitialized
	case e.isRunning:
		return core.ErrAlreadyRunning
	}

	e.host.CancelCallback(e.callbackID)
	e.run++
	e.isRunning = true
	e.currentStage = EngineStageRunning
	e.callbackID = e.host.RequestCallback(e.prime)
	e.log.Debug("loop started")
	return nil
}

func (e *Engine) prime(timestamp float64) {
	e.clock.Prime(timestamp)
	e.callbackID = e.host.RequestCallback(e.Loop)
}

// Stop resets the frame rate readout and cancels the pending callback. No
// loop callback fires after Stop returns.
func (e *Engine) Stop() {
	e.ResetFrameRate()
	e.host.CancelCallback(e.callbackID)
	if e.isRunning {
		e.run++
		e.isRunning = false
		e.currentStage = EngineStageInitialized
		e.log.Debug("loop stopped")
	}
}

// Loop runs one display refresh: sample the frame rate, run the fixed
// steps that fit in the elapsed time, draw once, reschedule.
func (e *Engine) Loop(currentTime float64) {
	run := e.run
	e.callbacks++

	if e.frameRate.Sample(currentTime) {
		e.frameRateSink.SetText(core.FormatFrameRate(e.frameRate.Rate()))
		if len(e.sampleHooks) > 0 {
			stats := e.Stats()
			for _, fn := range e.sampleHooks {
				fn(stats)
			}
		}
	}

	overruns := e.clock.Overruns()
	e.clock.Advance(currentTime, e.update)
	if e.clock.Overruns() != overruns {
		e.log.Debug("catch-up budget exhausted", "steps", e.clock.LastSteps(), "dropped_ms", e.clock.DroppedMs())
	}

	e.draw()

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	core.InputUpdate()

	// a Stop, or a Stop and Start, during this callback owns the schedule now
	if e.isRunning && e.run == run {
		e.callbackID = e.host.RequestCallback(e.Loop)
	}
}

func (e *Engine) update(deltaMs float64) {
	e.updates++
	e.machine.State().Update(deltaMs)
}

func (e *Engine) draw() {
	e.draws++
	e.machine.State().Draw(e.surface)
	if e.overlay != nil {
		e.overlay.Draw(e.surface)
	}
}

// ResetFrameRate zeroes the rate and the callback count and shows the reset
// readout. The clock bookkeeping is left alone.
func (e *Engine) ResetFrameRate() {
	e.frameRate.Reset()
	e.frameRateSink.SetText(core.FormatFrameRate(e.frameRate.Rate()))
}

// Resize sizes the surface to the window scaled by the configured relative
// size, keeping its contents, and tells the active state.
func (e *Engine) Resize() {
	w, h := e.window.Size()
	scale := e.config.Graphics.Canvas.RelativeSize
	width := int(scale.W * float64(w))
	height := int(scale.H * float64(h))

	if e.surface.Resize(width, height) {
		e.log.Debug("surface resized", "width", width, "height", height)
	}
	e.machine.State().Resize(width, height)
}

// Dispatch sends event to the machine. Events the active state does not
// handle are ignored.
func (e *Engine) Dispatch(event string) bool {
	if !e.machine.Dispatch(event) {
		e.log.Debug("event ignored", "event", event, "state", e.machine.Current())
		return false
	}
	return true
}

// ApplyConfig takes a reloaded configuration. The version, the log level,
// the relative size and the frame rate are picked up; window geometry only
// applies at startup.
func (e *Engine) ApplyConfig(cfg *ApplicationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	old := e.config
	e.config = cfg
	e.gameInstance.ApplicationConfig = cfg

	if cfg.Version != old.Version {
		e.versionSink.SetText(cfg.Version)
	}
	if cfg.Graphics.MaxFrameRate != old.Graphics.MaxFrameRate {
		e.clock.SetRate(cfg.Graphics.MaxFrameRate)
	}
	e.Resize()
	e.log.Info("config applied", "version", cfg.Version, "max_frame_rate", cfg.Graphics.MaxFrameRate)
	return nil
}

// Shutdown stops the loop and releases the event and input systems.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.Stop()

	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	core.EventUnregister(core.EVENT_CODE_KEY_PRESSED, e)
	core.EventUnregister(core.EVENT_CODE_RESIZED, e)
	if e.ownsEvents {
		if err := core.EventSystemShutdown(); err != nil {
			return err
		}
		e.ownsEvents = false
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}

	e.currentStage = EngineStageUninitialized
	return nil
}

func (e *Engine) Stats() FrameStats {
	return FrameStats{
		Session:     e.session.String(),
		State:       e.machine.Current(),
		Rate:        e.frameRate.Rate(),
		FrameTimeMs: e.frameRate.FrameTime(),
		LastSteps:   e.clock.LastSteps(),
		PendingMs:   e.clock.Delta(),
		Overruns:    e.clock.Overruns(),
		DroppedMs:   e.clock.DroppedMs(),
		Callbacks:   e.callbacks,
		Updates:     e.updates,
		Draws:       e.draws,
	}
}

func (e *Engine) Machine() *fsm.Machine[State] {
	return e.machine
}

func (e *Engine) Surface() *renderer.Surface {
	return e.surface
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Running() bool {
	return e.isRunning
}

func (e *Engine) Session() uuid.UUID {
	return e.session
}

func (e *Engine) onTransition(event, from, to string) {
	e.log.Info("transition", "event", event, "from", from, "to", to)
}

func (e *Engine) onQuit(context core.EventContext) bool {
	e.log.Info("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.Stop()
	for _, fn := range e.quitHandlers {
		fn()
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		e.log.Error("wrong event associated with the event type", "type", context.Type)
		return false
	}
	if h, ok := e.machine.State().(KeyHandler); ok {
		h.OnKey(ke.KeyCode)
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	if se, ok := context.Data.(*core.SystemEvent); ok {
		e.log.Debug("window resized", "width", se.WindowWidth, "height", se.WindowHeight)
	}
	e.Resize()
	return false
}
