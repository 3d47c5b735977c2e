package testbed

import (
	"github.com/spaghettifunk/tristris/engine"
	"github.com/spaghettifunk/tristris/engine/fsm"
)

// DefaultDefinition is used when the application config names no
// definition file.
const DefaultDefinition = `
initial = "title"
debug_initial = "game"

[[transitions]]
event = "game/start"
from = "title"
to = "game"

[[transitions]]
event = "game/exitToTitle"
from = "game"
to = "title"

[[transitions]]
event = "game/exitToTitle"
from = "title"
to = "title"

[[transitions]]
event = "game/pause"
from = "game"
to = "pause"

[[transitions]]
event = "game/unpause"
from = "pause"
to = "game"
`

// States registers the three modes of the game under the names the
// definition refers to.
func States() map[string]fsm.Factory[engine.State] {
	return map[string]fsm.Factory[engine.State]{
		"title": func(emit fsm.Emitter) engine.State { return NewTitle(emit) },
		"game":  func(emit fsm.Emitter) engine.State { return NewTristris(emit) },
		"pause": func(emit fsm.Emitter) engine.State { return NewPause(emit) },
	}
}

func NewTestGame(cfg *engine.ApplicationConfig) (*engine.Game, error) {
	if cfg == nil {
		cfg = engine.DefaultApplicationConfig()
	}

	var (
		def *fsm.Definition
		err error
	)
	if cfg.Definition != "" {
		def, err = fsm.LoadDefinition(cfg.Definition)
	} else {
		def, err = fsm.ParseDefinition([]byte(DefaultDefinition), fsm.FormatTOML)
	}
	if err != nil {
		return nil, err
	}

	return &engine.Game{
		ApplicationConfig: cfg,
		Definition:        def,
		States:            States(),
	}, nil
}
