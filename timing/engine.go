// Package timing is the discrete event engine that paces render frames.
package timing

import "github.com/sarchlab/audren/hooking"

// Hook positions of an Engine. The item is the event.
var (
	HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &hooking.HookPos{Name: "AfterEvent"}
)

// TimeTeller tells the time of the renderer clock.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events due in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// An EndHandler runs once an engine has no events left.
type EndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine runs events in the order they are due.
type Engine interface {
	hooking.Hookable
	TimeTeller
	EventScheduler

	// Run handles events until none is left or a handler fails.
	Run() error

	// Pause holds the engine before its next event until Continue.
	Pause()
	Continue()

	RegisterEndHandler(handler EndHandler)

	// Finished calls the registered EndHandlers.
	Finished()
}
