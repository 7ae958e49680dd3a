package effect

import "github.com/sarchlab/audren/behaviour"

// BiquadFilterParameter is the payload of the biquad filter kind. The
// coefficients are fixed point values in Q14.
type BiquadFilterParameter struct {
	Input        [6]uint8
	Output       [6]uint8
	Numerator    [3]int16
	Denominator  [2]int16
	ChannelCount uint8
	Status       UsageState
}

// BiquadFilterEffect is a second order IIR filter.
type BiquadFilterEffect struct {
	BaseEffect

	Parameter BiquadFilterParameter
}

// NewBiquadFilterEffect creates an inert biquad filter slot.
func NewBiquadFilterEffect() *BiquadFilterEffect {
	return &BiquadFilterEffect{BaseEffect: makeBaseEffect(TypeBiquadFilter, 0)}
}

// Update copies the guest parameter record.
func (e *BiquadFilterEffect) Update(
	p *InParameter,
	_ BufferMapper,
) (behaviour.ErrorInfo, error) {
	if err := e.mustMatch(p); err != nil {
		return behaviour.ErrorInfo{}, err
	}

	param, err := DecodeSpecific[BiquadFilterParameter](p)
	if err != nil {
		return behaviour.ErrorInfo{}, err
	}

	e.UpdateParameterBase(p)
	e.Parameter = param
	e.IsEnabled = p.IsEnabled

	return behaviour.ErrorInfo{}, nil
}

// UpdateForCommandGeneration resolves the usage state.
func (e *BiquadFilterEffect) UpdateForCommandGeneration() {
	e.UpdateUsageStateForCommandGeneration()

	if e.UsageState == UsageStateEnabled {
		e.Parameter.Status = UsageStateEnabled
	}
}
