package renderer

import (
	"image"
	"sync"
)

// Label is a text sink drawn by an Overlay. SetText may be called from any
// goroutine.
type Label struct {
	Pos image.Point

	mu   sync.Mutex
	text string
}

func NewLabel(x, y int) *Label {
	return &Label{Pos: image.Pt(x, y)}
}

func (l *Label) SetText(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
}

func (l *Label) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Overlay draws its labels on top of a finished frame.
type Overlay struct {
	face   Face
	labels []*Label
}

func NewOverlay(face Face, labels ...*Label) *Overlay {
	return &Overlay{face: face, labels: labels}
}

func (o *Overlay) Add(l *Label) {
	o.labels = append(o.labels, l)
}

// SetFace swaps the face, e.g. once a bitmap font has loaded.
func (o *Overlay) SetFace(face Face) {
	if face != nil {
		o.face = face
	}
}

func (o *Overlay) Draw(s *Surface) {
	if o.face == nil {
		return
	}
	for _, l := range o.labels {
		if text := l.Text(); text != "" {
			o.face.DrawText(s.Image(), l.Pos, text)
		}
	}
}
