package effect

import "github.com/sarchlab/audren/behaviour"

// LimiterParameter is the payload of the limiter kind.
type LimiterParameter struct {
	Input              [6]uint8
	Output             [6]uint8
	ChannelCountMax    uint16
	ChannelCount       uint16
	SampleRate         int32
	LookAheadTimeMax   int32
	AttackTime         int32
	ReleaseTime        int32
	LookAheadTime      int32
	AttackCoefficient  float32
	ReleaseCoefficient float32
	Threshold          float32
	InputGain          float32
	OutputGain         float32
	StatisticsEnabled  bool
	StatisticsReset    bool
	Status             UsageState
	Reserved           uint8
}

func (p *LimiterParameter) channelCounts() (uint16, uint16) {
	return p.ChannelCountMax, p.ChannelCount
}

func (p *LimiterParameter) status() UsageState     { return p.Status }
func (p *LimiterParameter) setStatus(s UsageState) { p.Status = s }

// LimiterStatistics is the result state the limiter reports when statistics
// are enabled.
type LimiterStatistics struct {
	InputMax           [6]float32
	CompressionGainMin [6]float32
}

// LimiterEffect is a look-ahead limiter.
type LimiterEffect struct {
	BaseEffect

	Parameter LimiterParameter
}

// NewLimiterEffect creates an inert limiter slot.
func NewLimiterEffect() *LimiterEffect {
	return &LimiterEffect{BaseEffect: makeBaseEffect(TypeLimiter, 1)}
}

// Update applies a guest parameter record.
func (e *LimiterEffect) Update(
	p *InParameter,
	mapper BufferMapper,
) (behaviour.ErrorInfo, error) {
	return updateGated(&e.BaseEffect, &e.Parameter, p, mapper, 1)
}

// UpdateForCommandGeneration resolves the usage state. A statistics reset
// only lasts for one frame.
func (e *LimiterEffect) UpdateForCommandGeneration() {
	resolveGated(&e.BaseEffect, &e.Parameter)
	e.Parameter.StatisticsReset = false
}

// GetWorkBuffer returns the DSP address of the look-ahead buffer while the
// slot is enabled.
func (e *LimiterEffect) GetWorkBuffer(_ int) uint64 {
	return e.singleBufferReference()
}

// UpdateResultState copies the statistics the DSP produced.
func (e *LimiterEffect) UpdateResultState(dst, src *ResultState) {
	if e.Parameter.StatisticsEnabled {
		*dst = *src
	}
}
