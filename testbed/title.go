package testbed

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/renderer"
)

const blinkMs = 500.0

type Title struct {
	emit   fsm.Emitter
	text   *renderer.TextFace
	clock  float64
	prompt bool
	width  int
	height int
}

func NewTitle(emit fsm.Emitter) *Title {
	return &Title{
		emit: emit,
		text: renderer.NewBasicFace(color.White),
	}
}

func (t *Title) Enter() {
	t.prompt = true
}

// Update blinks the prompt.
func (t *Title) Update(deltaMs float64) {
	t.clock += deltaMs
	for t.clock >= blinkMs {
		t.clock -= blinkMs
		t.prompt = !t.prompt
	}
}

func (t *Title) OnKey(key core.KeyCode) {
	switch key {
	case core.KEY_ENTER, core.KEY_SPACE:
		t.emit.Emit("game/start")
	case core.KEY_ESCAPE:
		t.emit.Emit("game/exitToTitle")
	}
}

func (t *Title) Draw(s *renderer.Surface) {
	s.Clear(color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff})
	t.centered(s, "TRISTRIS", t.height/3)
	if t.prompt {
		t.centered(s, "press enter", t.height/2)
	}
}

func (t *Title) centered(s *renderer.Surface, text string, y int) {
	x := (t.width - t.text.MeasureText(text)) / 2
	t.text.DrawText(s.Image(), image.Pt(x, y), text)
}

func (t *Title) Resize(width, height int) {
	t.width, t.height = width, height
}
