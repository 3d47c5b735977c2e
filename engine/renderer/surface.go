package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Surface is the drawing target shared by the engine and the active state.
// States must not keep a reference to it between calls: Resize replaces the
// backing image.
type Surface struct {
	img *image.RGBA
}

func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Resize changes the surface dimensions, keeping the pixels that fit in the
// new bounds. The old contents go through an off-surface copy before the
// backing image is reallocated. It reports whether the dimensions changed.
func (s *Surface) Resize(width, height int) bool {
	width, height = max(width, 0), max(height, 0)
	if width == s.Width() && height == s.Height() {
		return false
	}

	scratch := image.NewRGBA(s.img.Bounds())
	draw.Copy(scratch, image.Point{}, s.img, s.img.Bounds(), draw.Src, nil)

	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Copy(s.img, image.Point{}, scratch, scratch.Bounds(), draw.Src, nil)
	return true
}

func (s *Surface) Width() int {
	return s.img.Bounds().Dx()
}

func (s *Surface) Height() int {
	return s.img.Bounds().Dy()
}

func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Image exposes the backing image as the drawing context.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect fills r, clipped to the surface.
func (s *Surface) FillRect(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Surface) At(x, y int) color.Color {
	return s.img.At(x, y)
}
