package testbed

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/spaghettifunk/tristris/engine/core"
	"github.com/spaghettifunk/tristris/engine/fsm"
	"github.com/spaghettifunk/tristris/engine/renderer"
)

const (
	gravityMs     = 500.0
	softGravityMs = 50.0
)

var pieceColors = []color.RGBA{
	{R: 0x10, G: 0x10, B: 0x18, A: 0xff},
	{R: 0x3f, G: 0xc5, B: 0xf0, A: 0xff},
	{R: 0xf0, G: 0x9a, B: 0x3f, A: 0xff},
}

// Tristris is the game itself: three-cell pieces falling into a well.
type Tristris struct {
	emit  fsm.Emitter
	board *Board
	text  *renderer.TextFace

	fall   float64
	cell   int
	origin image.Point
}

func NewTristris(emit fsm.Emitter) *Tristris {
	return &Tristris{
		emit: emit,
		text: renderer.NewBasicFace(color.White),
	}
}

func (g *Tristris) Enter() {
	g.board = NewBoard(uint64(time.Now().UnixNano()))
	core.LogDebug("tristris board %dx%d ready", BoardWidth, BoardHeight)
}

func (g *Tristris) Board() *Board {
	return g.board
}

func (g *Tristris) Update(deltaMs float64) {
	interval := gravityMs
	if core.InputIsKeyDown(core.KEY_DOWN) {
		interval = softGravityMs
	}

	g.fall += deltaMs
	for g.fall >= interval {
		g.fall -= interval
		g.board.Step()
	}

	if g.board.GameOver {
		core.LogInfo("game over: score %d, %d lines", g.board.Score, g.board.Lines)
		g.board.Reset()
		g.fall = 0
		g.emit.Emit("game/exitToTitle")
	}
}

func (g *Tristris) OnKey(key core.KeyCode) {
	switch key {
	case core.KEY_LEFT, core.KEY_A:
		g.board.MoveLeft()
	case core.KEY_RIGHT, core.KEY_D:
		g.board.MoveRight()
	case core.KEY_UP, core.KEY_W:
		g.board.Rotate()
	case core.KEY_SPACE:
		g.board.Drop()
	case core.KEY_P, core.KEY_ESCAPE:
		g.emit.Emit("game/pause")
	case core.KEY_Q:
		g.board.Reset()
		g.emit.Emit("game/exitToTitle")
	}
}

func (g *Tristris) Draw(s *renderer.Surface) {
	s.Clear(color.Black)
	if g.cell == 0 {
		return
	}
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			c := pieceColors[g.board.At(x, y)]
			min := g.origin.Add(image.Pt(x*g.cell, y*g.cell))
			s.FillRect(image.Rectangle{Min: min, Max: min.Add(image.Pt(g.cell-1, g.cell-1))}, c)
		}
	}
	g.text.DrawText(s.Image(), image.Pt(4, 4), fmt.Sprintf("SCORE %d", g.board.Score))
}

// Resize fits the well in the surface, keeping square cells.
func (g *Tristris) Resize(width, height int) {
	g.cell = max(0, min(width/BoardWidth, height/BoardHeight))
	g.origin = image.Pt((width-g.cell*BoardWidth)/2, (height-g.cell*BoardHeight)/2)
}
