package effect

import "github.com/sarchlab/audren/behaviour"

// MaxMixBufferCount is the number of mix buffers an effect can address.
const MaxMixBufferCount = 24

// BufferMixParameter is the payload of the buffer mix kind.
type BufferMixParameter struct {
	Input      [MaxMixBufferCount]uint8
	Output     [MaxMixBufferCount]uint8
	Volumes    [MaxMixBufferCount]float32
	MixesCount uint32
}

// BufferMixEffect mixes buffers into other buffers with a volume each.
type BufferMixEffect struct {
	BaseEffect

	Parameter BufferMixParameter
}

// NewBufferMixEffect creates an inert buffer mix slot.
func NewBufferMixEffect() *BufferMixEffect {
	return &BufferMixEffect{BaseEffect: makeBaseEffect(TypeBufferMix, 0)}
}

// Update copies the guest parameter record.
func (e *BufferMixEffect) Update(
	p *InParameter,
	_ BufferMapper,
) (behaviour.ErrorInfo, error) {
	if err := e.mustMatch(p); err != nil {
		return behaviour.ErrorInfo{}, err
	}

	param, err := DecodeSpecific[BufferMixParameter](p)
	if err != nil {
		return behaviour.ErrorInfo{}, err
	}

	e.UpdateParameterBase(p)
	e.Parameter = param
	e.IsEnabled = p.IsEnabled

	return behaviour.ErrorInfo{}, nil
}

// UpdateForCommandGeneration resolves the usage state.
func (e *BufferMixEffect) UpdateForCommandGeneration() {
	e.UpdateUsageStateForCommandGeneration()
}
