package renderer

import (
	"github.com/sarchlab/audren/timing"
)

// DefaultOutputSize is the size of the status blob buffer a FrameDriver
// hands to the renderer unless told otherwise.
const DefaultOutputSize = 0x10000

// A FrameSource provides the update blob of every frame.
type FrameSource interface {
	// NextFrame returns the update blob of the given frame. It returns false
	// when there are no more frames.
	NextFrame(frame uint64) ([]byte, bool)
}

// FrameResult is what a frame produced.
type FrameResult struct {
	Frame    uint64
	Output   []byte
	Err      error
	Commands []CommandTarget
}

// A CommandSink consumes the result of every frame.
type CommandSink interface {
	Consume(result FrameResult)
}

// FrameDriver runs one update and one command generation per tick.
type FrameDriver struct {
	*timing.TickingComponent

	system     *System
	source     FrameSource
	sink       CommandSink
	outputSize int
	frame      uint64
}

// NewFrameDriver creates a FrameDriver ticking at timing.FrameRate.
func NewFrameDriver(
	name string,
	engine timing.Engine,
	system *System,
	source FrameSource,
	sink CommandSink,
) *FrameDriver {
	d := &FrameDriver{
		system:     system,
		source:     source,
		sink:       sink,
		outputSize: DefaultOutputSize,
	}
	d.TickingComponent = timing.NewTickingComponent(
		name, engine, timing.FrameRate, d)

	return d
}

// WithOutputSize sets the size of the status blob buffer.
func (d *FrameDriver) WithOutputSize(size int) *FrameDriver {
	d.outputSize = size
	return d
}

// Frame returns the number of frames the driver ran.
func (d *FrameDriver) Frame() uint64 {
	return d.frame
}

// Tick runs a single frame. It stops ticking when the source runs dry.
func (d *FrameDriver) Tick() bool {
	input, ok := d.source.NextFrame(d.frame)
	if !ok {
		return false
	}

	result := FrameResult{
		Frame:  d.frame,
		Output: make([]byte, d.outputSize),
	}

	result.Err = d.system.Update(input, result.Output)
	result.Commands = d.system.GenerateCommands()

	d.sink.Consume(result)
	d.frame++

	return true
}
