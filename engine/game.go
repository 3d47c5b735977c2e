package engine

import (
	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/renderer"
)

// Game is what an application hands to the engine: its configuration, the
// machine definition and the states the definition names.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Definition        *fsm.Definition
	States            map[string]fsm.Factory[State]
}

// State is one top-level mode of the game. Exactly one is active at a time.
// Enter runs once, when the machine is built. Update advances the simulation
// by exactly deltaMs. Draw renders onto the surface, which must not be kept
// after the call. Resize adapts to new surface dimensions.
type State interface {
	Enter()
	Update(deltaMs float64)
	Draw(surface *renderer.Surface)
	Resize(width, height int)
}

// KeyHandler is implemented by states that react to key presses. Only the
// active state receives them.
type KeyHandler interface {
	OnKey(key core.KeyCode)
}

// Host runs callbacks on the next display refresh.
type Host interface {
	RequestCallback(fn core.FrameCallback) core.CallbackID
	CancelCallback(id core.CallbackID)
}

type Window interface {
	Size() (width, height int)
}

// TextSinks sends the same text to every sink.
type TextSinks []core.TextSink

func (t TextSinks) SetText(text string) {
	for _, s := range t {
		s.SetText(text)
	}
}
