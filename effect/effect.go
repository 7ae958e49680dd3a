// Package effect holds the per-slot state of the renderer's effects and the
// rules that turn guest parameter updates into a usage state the command
// generator can rely on.
package effect

import (
	"errors"
	"fmt"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/mem/pool"
)

// ErrTypeMismatch is returned when a parameter record is applied to a slot of
// another kind.
var ErrTypeMismatch = errors.New("effect type mismatch")

// ErrUnknownType is returned when a kind has no implementation.
var ErrUnknownType = errors.New("unknown effect type")

// A BufferMapper attaches work buffers to guest memory.
type BufferMapper interface {
	TryAttachBuffer(
		info *pool.AddressInfo,
		address, size uint64,
	) (behaviour.ErrorInfo, bool)
	ForceUnmap(info *pool.AddressInfo)
}

// Effect is an effect slot.
type Effect interface {
	// Type returns the kind the slot was created for.
	Type() Type

	// Base returns the fields every kind shares.
	Base() *BaseEffect

	// IsTypeValid tells if the parameter record targets this kind.
	IsTypeValid(p *InParameter) bool

	// Update applies a guest parameter record. The returned ErrorInfo
	// describes a recoverable failure such as a buffer that could not be
	// attached. The returned error is only set when the record does not
	// belong to this slot.
	Update(p *InParameter, mapper BufferMapper) (behaviour.ErrorInfo, error)

	// UpdateForCommandGeneration resolves the usage state for this frame.
	UpdateForCommandGeneration()

	// GetWorkBuffer returns the DSP address of a work buffer, or 0.
	GetWorkBuffer(index int) uint64

	// ForceUnmapBuffers releases every work buffer.
	ForceUnmapBuffers(mapper BufferMapper)

	// StoreStatus returns the status to report back to the guest.
	StoreStatus(isRendererActive bool) Status

	// InitializeResultState clears a result state for a new slot.
	InitializeResultState(state *ResultState)

	// UpdateResultState copies what the DSP produced into the guest record.
	UpdateResultState(dst, src *ResultState)
}

// NewEffect creates an inert slot of the given kind.
func NewEffect(t Type) (Effect, error) {
	switch t {
	case TypeInvalid:
		return NewBaseEffect(), nil
	case TypeBufferMix:
		return NewBufferMixEffect(), nil
	case TypeAuxiliaryBuffer:
		return NewAuxiliaryBufferEffect(), nil
	case TypeCaptureBuffer:
		return NewCaptureBufferEffect(), nil
	case TypeDelay:
		return NewDelayEffect(), nil
	case TypeReverb:
		return NewReverbEffect(), nil
	case TypeReverb3d:
		return NewReverb3dEffect(), nil
	case TypeBiquadFilter:
		return NewBiquadFilterEffect(), nil
	case TypeLimiter:
		return NewLimiterEffect(), nil
	case TypeCompressor:
		return NewCompressorEffect(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// BaseEffect holds the fields shared by every kind. On its own it is the
// inert slot of the Invalid kind.
type BaseEffect struct {
	kind Type

	IsEnabled       bool
	UsageState      UsageState
	BufferUnmapped  bool
	MixID           int32
	ProcessingOrder uint32
	NodeID          uint32
	WorkBuffers     []pool.AddressInfo
}

// NewBaseEffect creates an inert slot of the Invalid kind.
func NewBaseEffect() *BaseEffect {
	b := makeBaseEffect(TypeInvalid, 0)
	return &b
}

func makeBaseEffect(kind Type, workBufferCount int) BaseEffect {
	return BaseEffect{
		kind:            kind,
		UsageState:      UsageStateInvalid,
		MixID:           UnusedMixID,
		ProcessingOrder: ^uint32(0),
		WorkBuffers:     make([]pool.AddressInfo, workBufferCount),
	}
}

// Type returns the kind the slot was created for.
func (e *BaseEffect) Type() Type {
	return e.kind
}

// Base returns e.
func (e *BaseEffect) Base() *BaseEffect {
	return e
}

// IsTypeValid tells if the parameter record targets this kind.
func (e *BaseEffect) IsTypeValid(p *InParameter) bool {
	return p.Type == e.kind
}

func (e *BaseEffect) mustMatch(p *InParameter) error {
	if p.Type != e.kind {
		return fmt.Errorf("%w: slot is %s, parameter is %s",
			ErrTypeMismatch, e.kind, p.Type)
	}

	return nil
}

// UpdateParameterBase copies the fields every kind shares.
func (e *BaseEffect) UpdateParameterBase(p *InParameter) {
	e.MixID = p.MixID
	e.ProcessingOrder = p.ProcessingOrder
}

// Update only checks the kind. The Invalid slot has nothing to apply.
func (e *BaseEffect) Update(
	p *InParameter,
	_ BufferMapper,
) (behaviour.ErrorInfo, error) {
	return behaviour.ErrorInfo{}, e.mustMatch(p)
}

// UpdateForCommandGeneration leaves the Invalid slot untouched.
func (e *BaseEffect) UpdateForCommandGeneration() {}

// UpdateUsageStateForCommandGeneration resolves the usage state from the
// enabled flag and the buffer mapping. A slot whose buffers are still
// unmapped keeps the state it has.
func (e *BaseEffect) UpdateUsageStateForCommandGeneration() {
	switch {
	case !e.IsEnabled:
		e.UsageState = UsageStateDisabled
	case !e.BufferUnmapped:
		e.UsageState = UsageStateEnabled
	}
}

// GetWorkBuffer returns the DSP address of a work buffer and marks its pool
// as used. It returns 0 for an index out of range or an unmapped buffer.
func (e *BaseEffect) GetWorkBuffer(index int) uint64 {
	if index < 0 || index >= len(e.WorkBuffers) {
		return 0
	}

	return e.WorkBuffers[index].GetReference(true)
}

// ForceUnmapBuffers releases every work buffer that is still mapped.
func (e *BaseEffect) ForceUnmapBuffers(mapper BufferMapper) {
	for i := range e.WorkBuffers {
		if e.WorkBuffers[i].GetReference(false) != 0 {
			mapper.ForceUnmap(&e.WorkBuffers[i])
		}
	}
}

// StoreStatus returns the status to report back to the guest.
func (e *BaseEffect) StoreStatus(isRendererActive bool) Status {
	if isRendererActive {
		if e.UsageState == UsageStateDisabled {
			return StatusDisabled
		}

		return StatusEnabled
	}

	if e.UsageState == UsageStateNew {
		return StatusEnabled
	}

	return StatusDisabled
}

// InitializeResultState clears the result state.
func (e *BaseEffect) InitializeResultState(state *ResultState) {
	clear(state[:])
}

// UpdateResultState does nothing for kinds without a result state.
func (e *BaseEffect) UpdateResultState(_, _ *ResultState) {}

func (e *BaseEffect) singleBufferReference() uint64 {
	if !e.IsEnabled {
		return 0
	}

	return e.WorkBuffers[0].GetReference(true)
}
