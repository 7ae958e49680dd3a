package effect

import "github.com/sarchlab/audren/behaviour"

// gatedParameter is a payload that declares channel counts and carries its
// own copy of the usage state.
type gatedParameter[P any] interface {
	*P
	channelCounts() (countMax, count uint16)
	status() UsageState
	setStatus(s UsageState)
}

// updateGated applies a payload that is guarded by its channel counts and
// needs a single work buffer at the record's buffer base.
//
// An invalid maximum channel count drops the whole record. An invalid channel
// count keeps the record but skips enablement and attachment. The status
// carried by the payload survives the copy unless it was Enabled.
func updateGated[P any, PP gatedParameter[P]](
	e *BaseEffect,
	param PP,
	p *InParameter,
	mapper BufferMapper,
	workBufferCount int,
) (behaviour.ErrorInfo, error) {
	if err := e.mustMatch(p); err != nil {
		return behaviour.ErrorInfo{}, err
	}

	next, err := DecodeSpecific[P](p)
	if err != nil {
		return behaviour.ErrorInfo{}, err
	}

	countMax, count := PP(&next).channelCounts()
	if !IsChannelCountValid(countMax) {
		return behaviour.ErrorInfo{}, nil
	}

	e.UpdateParameterBase(p)

	oldStatus := param.status()
	*param = next

	if !IsChannelCountValid(count) {
		return behaviour.ErrorInfo{}, nil
	}

	e.IsEnabled = p.IsEnabled

	if oldStatus != UsageStateEnabled {
		param.setStatus(oldStatus)
	}

	if workBufferCount == 0 || (!e.BufferUnmapped && !p.IsNew) {
		return behaviour.ErrorInfo{}, nil
	}

	e.UsageState = UsageStateNew
	param.setStatus(UsageStateInvalid)

	errorInfo, ok := mapper.TryAttachBuffer(
		&e.WorkBuffers[0], p.BufferBase, p.BufferSize)
	e.BufferUnmapped = !ok

	return errorInfo, nil
}

// resolveGated resolves the usage state and reports the slot as enabled in
// its payload once it is.
func resolveGated[P any, PP gatedParameter[P]](e *BaseEffect, param PP) {
	e.UpdateUsageStateForCommandGeneration()

	if e.UsageState == UsageStateEnabled {
		param.setStatus(UsageStateEnabled)
	}
}
