package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face draws a single line of text at pos.
type Face interface {
	DrawText(dst draw.Image, pos image.Point, text string)
}

// FaceFunc adapts a plain function, such as a bitmap font's DrawText, to a
// Face.
type FaceFunc func(dst draw.Image, pos image.Point, text string)

func (f FaceFunc) DrawText(dst draw.Image, pos image.Point, text string) {
	f(dst, pos, text)
}

// TextFace draws with a golang.org/x/image font face in a single color.
type TextFace struct {
	face  font.Face
	color color.Color
}

func NewTextFace(face font.Face, c color.Color) *TextFace {
	return &TextFace{face: face, color: c}
}

// NewBasicFace uses the fixed 7x13 face, which needs no font files.
func NewBasicFace(c color.Color) *TextFace {
	return NewTextFace(basicfont.Face7x13, c)
}

func (f *TextFace) DrawText(dst draw.Image, pos image.Point, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(f.color),
		Face: f.face,
		Dot:  fixed.Point26_6{X: fixed.I(pos.X), Y: fixed.I(pos.Y) + f.face.Metrics().Ascent},
	}
	d.DrawString(text)
}

// LineHeight is the vertical advance between two lines in pixels.
func (f *TextFace) LineHeight() int {
	return f.face.Metrics().Height.Ceil()
}

// MeasureText returns the width of text in pixels.
func (f *TextFace) MeasureText(text string) int {
	return font.MeasureString(f.face, text).Round()
}
