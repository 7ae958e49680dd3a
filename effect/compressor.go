package effect

import "github.com/sarchlab/audren/behaviour"

// CompressorParameter is the payload of the compressor kind.
type CompressorParameter struct {
	Input             [6]uint8
	Output            [6]uint8
	ChannelCountMax   uint16
	ChannelCount      uint16
	SampleRate        int32
	Threshold         float32
	CompressorRatio   float32
	AttackTime        int32
	ReleaseTime       int32
	UnknownTime       float32
	OutputGain        float32
	InputGain         float32
	MakeupGainEnabled bool
	StatisticsEnabled bool
	StatisticsReset   bool
	Status            UsageState
}

// CompressorStatistics is the result state the compressor reports when
// statistics are enabled.
type CompressorStatistics struct {
	MaximumMean float32
	MinimumGain float32
	LastSamples [6]float32
}

// CompressorEffect is a dynamic range compressor.
type CompressorEffect struct {
	BaseEffect

	Parameter CompressorParameter
}

// NewCompressorEffect creates an inert compressor slot.
func NewCompressorEffect() *CompressorEffect {
	return &CompressorEffect{BaseEffect: makeBaseEffect(TypeCompressor, 0)}
}

// Update copies the guest parameter record.
func (e *CompressorEffect) Update(
	p *InParameter,
	_ BufferMapper,
) (behaviour.ErrorInfo, error) {
	if err := e.mustMatch(p); err != nil {
		return behaviour.ErrorInfo{}, err
	}

	param, err := DecodeSpecific[CompressorParameter](p)
	if err != nil {
		return behaviour.ErrorInfo{}, err
	}

	e.UpdateParameterBase(p)
	e.Parameter = param
	e.IsEnabled = p.IsEnabled

	return behaviour.ErrorInfo{}, nil
}

// UpdateForCommandGeneration resolves the usage state. A statistics reset
// only lasts for one frame.
func (e *CompressorEffect) UpdateForCommandGeneration() {
	e.UpdateUsageStateForCommandGeneration()

	if e.UsageState == UsageStateEnabled {
		e.Parameter.Status = UsageStateEnabled
	}

	e.Parameter.StatisticsReset = false
}

// UpdateResultState copies the statistics the DSP produced.
func (e *CompressorEffect) UpdateResultState(dst, src *ResultState) {
	if e.Parameter.StatisticsEnabled {
		*dst = *src
	}
}
