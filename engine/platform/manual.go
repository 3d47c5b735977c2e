package platform

// Manual is a host fired by hand with synthetic timestamps. It drives the
// engine in tests and replays.
type Manual struct {
	*RefreshLoop
	width  int
	height int
}

func NewManual(width, height int) *Manual {
	return &Manual{
		RefreshLoop: NewRefreshLoop(),
		width:       width,
		height:      height,
	}
}

// Fire delivers one display refresh at timestamp (milliseconds).
func (m *Manual) Fire(timestamp float64) int {
	return m.Refresh(timestamp)
}

// FireEvery delivers count refreshes starting at start, spaced by interval.
// It returns the timestamp of the last refresh.
func (m *Manual) FireEvery(start, interval float64, count int) float64 {
	t := start
	for i := 0; i < count; i++ {
		t = start + float64(i)*interval
		m.Refresh(t)
	}
	return t
}

func (m *Manual) Size() (int, int) {
	return m.width, m.height
}

func (m *Manual) SetSize(width, height int) {
	m.width = width
	m.height = height
}
