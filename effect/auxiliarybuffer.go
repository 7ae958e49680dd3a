package effect

import "github.com/sarchlab/audren/behaviour"

// Layout of the guest buffers shared by the auxiliary and capture kinds. Each
// guest buffer starts with a read info block, then a write info block, then
// the sample storage.
const (
	AuxiliaryBufferInfoSize   = 0x40
	AuxiliaryBufferHeaderSize = 2 * AuxiliaryBufferInfoSize
)

// AuxiliaryBufferParameter is the payload of the auxiliary buffer and
// capture buffer kinds.
type AuxiliaryBufferParameter struct {
	Input                      [24]uint8
	Output                     [24]uint8
	MixBufferCount             uint32
	SampleRate                 uint32
	BufferStorageSize          uint32
	Reserved                   uint32
	SendBufferInfoAddress      uint64
	SendBufferStorageAddress   uint64
	ReturnBufferInfoAddress    uint64
	ReturnBufferStorageAddress uint64
	MixBufferSampleSize        uint32
	TotalSampleCount           uint32
	MixBufferSampleCount       uint32
}

// WorkBufferSize is the size of each guest buffer the kind attaches.
func (p *AuxiliaryBufferParameter) WorkBufferSize() uint64 {
	return 4*uint64(p.BufferStorageSize) + AuxiliaryBufferHeaderSize
}

// AuxiliaryBufferAddresses are the DSP addresses of the info blocks of the
// attached buffers. A buffer that is not mapped has all its addresses at 0.
type AuxiliaryBufferAddresses struct {
	SendBufferInfo       uint64
	SendBufferInfoBase   uint64
	ReturnBufferInfo     uint64
	ReturnBufferInfoBase uint64
}

func auxiliaryAddresses(dspAddress uint64) (info, infoBase uint64) {
	if dspAddress == 0 {
		return 0, 0
	}

	return dspAddress + AuxiliaryBufferInfoSize,
		dspAddress + AuxiliaryBufferHeaderSize
}

// AuxiliaryBufferEffect sends a mix out to a guest buffer and reads the
// processed samples back from another one.
type AuxiliaryBufferEffect struct {
	BaseEffect

	Parameter AuxiliaryBufferParameter
	State     AuxiliaryBufferAddresses
}

// NewAuxiliaryBufferEffect creates an inert auxiliary buffer slot.
func NewAuxiliaryBufferEffect() *AuxiliaryBufferEffect {
	return &AuxiliaryBufferEffect{
		BaseEffect: makeBaseEffect(TypeAuxiliaryBuffer, 2),
	}
}

// Update applies a guest parameter record. Both buffers are reattached on a
// new record or while they are unmapped. The slot only counts as unmapped if
// neither buffer could be attached.
func (e *AuxiliaryBufferEffect) Update(
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
	size := param.WorkBufferSize()

	sendError, sendOK := mapper.TryAttachBuffer(
		&e.WorkBuffers[0], param.SendBufferInfoAddress, size)
	returnError, returnOK := mapper.TryAttachBuffer(
		&e.WorkBuffers[1], param.ReturnBufferInfoAddress, size)

	e.BufferUnmapped = !sendOK && !returnOK
	e.updateAddresses()

	if !sendOK {
		return sendError, nil
	}

	return returnError, nil
}

func (e *AuxiliaryBufferEffect) updateAddresses() {
	e.State.SendBufferInfo, e.State.SendBufferInfoBase =
		auxiliaryAddresses(e.WorkBuffers[0].GetReference(false))
	e.State.ReturnBufferInfo, e.State.ReturnBufferInfoBase =
		auxiliaryAddresses(e.WorkBuffers[1].GetReference(false))
}

// UpdateForCommandGeneration resolves the usage state and refreshes the info
// block addresses from the current pool mappings.
func (e *AuxiliaryBufferEffect) UpdateForCommandGeneration() {
	e.UpdateUsageStateForCommandGeneration()
	e.updateAddresses()
}

// GetWorkBuffer returns the DSP address of the sample storage of the send
// (index 0) or return (index 1) buffer, or 0 if that buffer is unmapped.
func (e *AuxiliaryBufferEffect) GetWorkBuffer(index int) uint64 {
	if index != 0 && index != 1 {
		return 0
	}

	_, infoBase := auxiliaryAddresses(e.WorkBuffers[index].GetReference(true))

	return infoBase
}
