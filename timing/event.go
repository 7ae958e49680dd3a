package timing

import "github.com/rs/xid"

// VTimeInSec is a point on the renderer clock, in seconds since the clock
// started.
type VTimeInSec float64

// A Handler runs the events scheduled for it. An event belongs to exactly
// one handler.
type Handler interface {
	Handle(e Event) error
}

// An Event is due at a point on the renderer clock.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// A FrameEvent asks a handler to run one frame.
type FrameEvent struct {
	ID string

	// Frame is the cycle of the clock frequency the event is due at.
	Frame uint64

	time    VTimeInSec
	handler Handler
}

// MakeFrameEvent creates a FrameEvent for frame that is due at time.
func MakeFrameEvent(handler Handler, time VTimeInSec, frame uint64) FrameEvent {
	return FrameEvent{
		ID:      xid.New().String(),
		Frame:   frame,
		time:    time,
		handler: handler,
	}
}

// Time returns when the frame is due.
func (e FrameEvent) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that runs the frame.
func (e FrameEvent) Handler() Handler {
	return e.handler
}
