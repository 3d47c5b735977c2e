package core

// CallbackID identifies a pending display refresh callback.
type CallbackID uint64

// FrameCallback runs once on a display refresh with a timestamp in
// milliseconds since an arbitrary, stable epoch.
type FrameCallback func(timestamp float64)

// TextSink receives short display strings such as the frame rate readout.
type TextSink interface {
	SetText(text string)
}
