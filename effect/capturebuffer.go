package effect

import "github.com/sarchlab/audren/behaviour"

// CaptureBufferEffect copies a mix into a guest buffer. It uses the layout of
// the auxiliary buffer kind with only the send buffer.
type CaptureBufferEffect struct {
	BaseEffect

	Parameter AuxiliaryBufferParameter
	State     AuxiliaryBufferAddresses
}

// NewCaptureBufferEffect creates an inert capture buffer slot.
func NewCaptureBufferEffect() *CaptureBufferEffect {
	return &CaptureBufferEffect{
		BaseEffect: makeBaseEffect(TypeCaptureBuffer, 1),
	}
}

// Update applies a guest parameter record.
func (e *CaptureBufferEffect) Update(
	p *InParameter,
	mapper BufferMapper,
) (behaviour.ErrorInfo, error) {
	if err := e.mustMatch(p); err != nil {
		return behaviour.ErrorInfo{}, err
	}

	param, err := DecodeSpecific[AuxiliaryBufferParameter](p)
	if err != nil {
		return behaviour.ErrorInfo{}, err
	}

	e.UpdateParameterBase(p)
	e.Parameter = param
	e.IsEnabled = p.IsEnabled

	if !e.BufferUnmapped && !p.IsNew {
		return behaviour.ErrorInfo{}, nil
	}

	e.UsageState = UsageStateNew

	errorInfo, ok := mapper.TryAttachBuffer(
		&e.WorkBuffers[0], param.SendBufferInfoAddress, param.WorkBufferSize())
	e.BufferUnmapped = !ok
	e.updateAddresses()

	return errorInfo, nil
}

func (e *CaptureBufferEffect) updateAddresses() {
	e.State.SendBufferInfo, e.State.SendBufferInfoBase =
		auxiliaryAddresses(e.WorkBuffers[0].GetReference(false))
}

// UpdateForCommandGeneration resolves the usage state.
func (e *CaptureBufferEffect) UpdateForCommandGeneration() {
	e.UpdateUsageStateForCommandGeneration()
	e.updateAddresses()
}

// GetWorkBuffer returns the DSP address of the sample storage of the send
// buffer, or 0.
func (e *CaptureBufferEffect) GetWorkBuffer(index int) uint64 {
	if index != 0 {
		return 0
	}

	_, infoBase := auxiliaryAddresses(e.WorkBuffers[0].GetReference(true))

	return infoBase
}
