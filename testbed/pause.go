package testbed

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/renderer"
)

type Pause struct {
	emit   fsm.Emitter
	text   *renderer.TextFace
	width  int
	height int
}

func NewPause(emit fsm.Emitter) *Pause {
	return &Pause{
		emit: emit,
		text: renderer.NewBasicFace(color.White),
	}
}

func (p *Pause) Enter() {}

func (p *Pause) Update(deltaMs float64) {}

func (p *Pause) OnKey(key core.KeyCode) {
	switch key {
	case core.KEY_P, core.KEY_ESCAPE, core.KEY_ENTER:
		p.emit.Emit("game/unpause")
	}
}

func (p *Pause) Draw(s *renderer.Surface) {
	s.Clear(color.Black)
	label := "PAUSED"
	x := (p.width - p.text.MeasureText(label)) / 2
	p.text.DrawText(s.Image(), image.Pt(x, p.height/2), label)
}

func (p *Pause) Resize(width, height int) {
	p.width, p.height = width, height
}
