package timing

import "sync"

// A Ticker does the work of one cycle. It returns false once it has nothing
// left to do.
type Ticker interface {
	Tick() bool
}

// A TickingComponent calls its Ticker once per cycle of its frequency, for
// as long as the Ticker keeps making progress. At most one tick is pending
// at any time.
type TickingComponent struct {
	lock    sync.Mutex
	name    string
	engine  Engine
	freq    Freq
	ticker  Ticker
	pending bool
	ticks   uint64
}

// NewTickingComponent creates a TickingComponent that schedules its ticks on
// engine.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return &TickingComponent{
		name:   name,
		engine: engine,
		freq:   freq,
		ticker: ticker,
	}
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Freq returns the tick frequency.
func (c *TickingComponent) Freq() Freq {
	return c.freq
}

// Ticks returns how many ticks have run.
func (c *TickingComponent) Ticks() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.ticks
}

// TickNow schedules a tick at the current cycle, or at the next cycle start
// if the engine is between cycles.
func (c *TickingComponent) TickNow() {
	c.scheduleAt(c.freq.ThisTick(c.engine.CurrentTime()))
}

// TickLater schedules a tick at the cycle after the current time.
func (c *TickingComponent) TickLater() {
	c.scheduleAt(c.freq.NextTick(c.engine.CurrentTime()))
}

func (c *TickingComponent) scheduleAt(t VTimeInSec) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.pending {
		return
	}

	c.pending = true
	c.engine.Schedule(MakeFrameEvent(c, t, c.freq.Cycle(t)))
}

// Handle runs the tick the event stands for and schedules the next one if the
// Ticker made progress.
func (c *TickingComponent) Handle(_ Event) error {
	c.lock.Lock()
	c.pending = false
	c.ticks++
	c.lock.Unlock()

	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
