package timing

import (
	"log"
	"math"
)

// Freq is a frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
)

// FrameRate is the rate at which the renderer processes frames.
const FrameRate Freq = 200 * Hz

// Period returns the time between two cycles.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle returns the cycle nearest to time.
func (f Freq) Cycle(time VTimeInSec) uint64 {
	return uint64(math.Round(float64(time) * float64(f)))
}

// CycleTime returns when cycle n starts.
func (f Freq) CycleTime(n uint64) VTimeInSec {
	return VTimeInSec(float64(n) / float64(f))
}

// ThisTick returns the first cycle start at or after now.
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	return f.CycleTime(uint64(math.Ceil(f.cycles(now))))
}

// NextTick returns the first cycle start strictly after now.
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	return f.CycleTime(uint64(math.Floor(f.cycles(now))) + 1)
}

// cycles counts the cycles up to now, snapped to a tenth of a cycle so that
// float error never moves a time across a cycle start.
func (f Freq) cycles(now VTimeInSec) float64 {
	if math.IsNaN(float64(now)) || now < 0 {
		log.Panicf("invalid time %v", now)
	}

	return math.Round(float64(now)*float64(f)*10) / 10
}
