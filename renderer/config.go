package renderer

import (
	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/mem/pool"
	"github.com/sarchlab/audren/mem/workbuffer"
)

// Sizing constants of the work buffer.
const (
	VoiceWaveBufferCount = 4
	WorkBufferAlignment  = 0x1000
	ResultStateAlignment = 0x10
)

// Config is what the guest asks for when it opens a renderer.
type Config struct {
	// Revision is the user revision the guest speaks, see
	// behaviour.MakeRevision.
	Revision    int32
	EffectCount uint32
	VoiceCount  uint32

	// WorkBufferAddress is the guest address of the work buffer. The work
	// buffer is registered as a DSP owned pool unless it is 0.
	WorkBufferAddress uint64
}

// MemoryPoolCount returns the number of memory pools the guest can use.
func (c Config) MemoryPoolCount() uint32 {
	return c.EffectCount + c.VoiceCount*VoiceWaveBufferCount
}

func (c Config) resultStateCount() uint32 {
	if !behaviour.CheckFeatureSupported(
		c.Revision, behaviour.MakeRevision(behaviour.Revision9)) {
		return 0
	}

	return c.EffectCount
}

// GetWorkBufferSize returns the size of the work buffer Initialize needs for
// cfg.
func GetWorkBufferSize(cfg Config) uint64 {
	var size uint64

	size = workbuffer.GetTargetSize[pool.State](
		size, uint64(cfg.MemoryPoolCount()), pool.StateAlignment)

	resultStates := uint64(cfg.resultStateCount())
	size = workbuffer.GetTargetSize[effect.ResultState](
		size, resultStates, ResultStateAlignment)
	size = workbuffer.GetTargetSize[effect.ResultState](
		size, resultStates, ResultStateAlignment)

	return workbuffer.AlignUp(size, WorkBufferAlignment)
}
