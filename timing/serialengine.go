package timing

import (
	"log"
	"reflect"
	"sync"

	"github.com/sarchlab/audren/hooking"
)

// A SerialEngine runs one event at a time on the calling goroutine. The
// clock and the queue may be read and written from other goroutines, which
// is how a monitor pauses a running engine.
type SerialEngine struct {
	hooking.HookableBase

	lock    sync.Mutex
	resumed *sync.Cond
	now     VTimeInSec
	paused  bool
	queue   *EventQueue

	runLock     sync.Mutex
	endHandlers []EndHandler
}

// NewSerialEngine creates a SerialEngine at time 0.
func NewSerialEngine() *SerialEngine {
	e := &SerialEngine{queue: NewEventQueue()}
	e.resumed = sync.NewCond(&e.lock)

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "Engine"
}

// Schedule queues an event. Events in the past are a programming error.
func (e *SerialEngine) Schedule(evt Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if evt.Time() < e.now {
		log.Panicf("scheduling %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), e.now)
	}

	e.queue.Push(evt)
}

// Run handles events until the queue is empty. It stops at the first event
// whose handler fails and returns that error.
func (e *SerialEngine) Run() error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	for {
		evt, ok := e.advance()
		if !ok {
			return nil
		}

		if err := e.handle(evt); err != nil {
			return err
		}
	}
}

// advance waits out a pause, pops the next event and moves the clock to it.
func (e *SerialEngine) advance() (Event, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	for e.paused {
		e.resumed.Wait()
	}

	evt, ok := e.queue.Pop()
	if !ok {
		return nil, false
	}

	e.now = evt.Time()

	return evt, true
}

func (e *SerialEngine) handle(evt Event) error {
	ctx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)

	ctx.Pos = HookPosAfterEvent
	ctx.Detail = err
	e.InvokeHook(ctx)

	return err
}

// Pause holds the engine before its next event.
func (e *SerialEngine) Pause() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.paused = true
}

// Continue releases a paused engine.
func (e *SerialEngine) Continue() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.paused = false
	e.resumed.Broadcast()
}

// IsPaused tells if the engine is paused.
func (e *SerialEngine) IsPaused() bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.paused
}

// CurrentTime returns the due time of the event being handled, or of the
// last one handled.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.now
}

// RegisterEndHandler registers a handler for Finished.
func (e *SerialEngine) RegisterEndHandler(handler EndHandler) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished calls every EndHandler with the current time.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
