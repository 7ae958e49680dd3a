// Package updater applies the update blob the guest sends every frame and
// writes the status blob it reads back.
package updater

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/mem/pool"
)

// HookPosEffectUpdate triggers after a slot applied its record. The item is
// the slot and the detail is an EffectUpdate.
var HookPosEffectUpdate = &hooking.HookPos{Name: "EffectUpdate"}

// HookPosEffectReset triggers after a slot was replaced by another kind. The
// item is the new slot and the detail is an EffectUpdate.
var HookPosEffectReset = &hooking.HookPos{Name: "EffectReset"}

// HookPosAttachFailed triggers when a slot reports an error. The item is the
// slot and the detail is an EffectUpdate.
var HookPosAttachFailed = &hooking.HookPos{Name: "AttachFailed"}

// EffectUpdate describes what happened to one slot during an update.
type EffectUpdate struct {
	Index     int
	ErrorInfo behaviour.ErrorInfo
}

// A StateUpdater walks one update blob section by section. The sections must
// be visited in the order the guest wrote them.
type StateUpdater struct {
	input    []byte
	consumed int
	output   []byte
	written  int

	inHeader  Header
	outHeader Header

	behaviour *behaviour.Context
	hooks     hooking.HookInvoker
}

// New reads the header of the input blob and reserves the header of the
// output blob.
func New(
	input, output []byte,
	behaviourContext *behaviour.Context,
) (*StateUpdater, error) {
	u := &StateUpdater{
		input:     input,
		output:    output,
		behaviour: behaviourContext,
	}

	if err := u.read(&u.inHeader, HeaderSize); err != nil {
		return nil, err
	}

	if len(output) < HeaderSize {
		return nil, fmt.Errorf("%w: output of %d bytes has no room for a header",
			behaviour.InvalidUpdateInfo, len(output))
	}

	u.outHeader.Revision = behaviourContext.UserRevision()
	u.outHeader.TotalSize = HeaderSize
	u.written = HeaderSize

	return u, u.commitHeader()
}

// WithHooks makes the updater report slot changes to the hooks of h.
func (u *StateUpdater) WithHooks(h hooking.HookInvoker) *StateUpdater {
	u.hooks = h
	return u
}

// InputHeader returns the header the guest sent.
func (u *StateUpdater) InputHeader() Header {
	return u.inHeader
}

// OutputHeader returns the header of the status blob written so far.
func (u *StateUpdater) OutputHeader() Header {
	return u.outHeader
}

func (u *StateUpdater) read(v any, size int) error {
	if len(u.input)-u.consumed < size {
		return fmt.Errorf("%w: input ends at %d, need %d more bytes",
			behaviour.InvalidUpdateInfo, len(u.input), size)
	}

	_, err := binary.Decode(
		u.input[u.consumed:u.consumed+size], binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("%w: %w", behaviour.InvalidUpdateInfo, err)
	}

	u.consumed += size

	return nil
}

func (u *StateUpdater) skip(size uint32) error {
	if len(u.input)-u.consumed < int(size) {
		return fmt.Errorf("%w: input ends at %d, need %d more bytes",
			behaviour.InvalidUpdateInfo, len(u.input), size)
	}

	u.consumed += int(size)

	return nil
}

func (u *StateUpdater) write(v any) error {
	n, err := binary.Encode(u.output[u.written:], binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("%w: output full at %d: %w",
			behaviour.InvalidUpdateInfo, u.written, err)
	}

	u.written += n

	return nil
}

func (u *StateUpdater) commitHeader() error {
	_, err := binary.Encode(u.output[:HeaderSize], binary.LittleEndian,
		&u.outHeader)

	return err
}

func (u *StateUpdater) invokeHook(
	pos *hooking.HookPos,
	item effect.Effect,
	detail EffectUpdate,
) {
	if u.hooks == nil || u.hooks.NumHooks() == 0 {
		return
	}

	u.hooks.InvokeHook(hooking.HookCtx{
		Domain: u.hooks,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

// UpdateBehaviourContext applies the behaviour section. The guest must keep
// the revision it initialized the renderer with.
func (u *StateUpdater) UpdateBehaviourContext() error {
	var p BehaviourParameter
	if err := u.read(&p, BehaviourParameterSize); err != nil {
		return err
	}

	if !behaviour.CheckValidRevision(p.UserRevision) ||
		p.UserRevision != u.behaviour.UserRevision() {
		return fmt.Errorf("%w: revision 0x%x, renderer runs 0x%x",
			behaviour.InvalidUpdateInfo, p.UserRevision,
			u.behaviour.UserRevision())
	}

	u.behaviour.ClearError()
	u.behaviour.UpdateFlags(p.Flags)

	if u.inHeader.BehaviourSize != BehaviourParameterSize {
		return fmt.Errorf("%w: behaviour section of %d bytes",
			behaviour.InvalidUpdateInfo, u.inHeader.BehaviourSize)
	}

	return nil
}

// UpdateMemoryPools applies one attach or detach request per pool.
func (u *StateUpdater) UpdateMemoryPools(
	mapper *pool.Mapper,
	pools []pool.State,
) error {
	if uint32(len(pools)*pool.InParameterSize) != u.inHeader.MemoryPoolsSize {
		return fmt.Errorf("%w: %d pools in a section of %d bytes",
			behaviour.InvalidUpdateInfo, len(pools), u.inHeader.MemoryPoolsSize)
	}

	for i := range pools {
		var in pool.InParameter
		if err := u.read(&in, pool.InParameterSize); err != nil {
			return err
		}

		var out pool.OutStatus
		result := mapper.Update(&pools[i], &in, &out)
		if result == pool.UpdateInvalidParameter {
			return fmt.Errorf("%w: pool %d rejected %s of [0x%x, +0x%x)",
				behaviour.InvalidUpdateInfo, i, in.State, in.CPUAddress, in.Size)
		}

		if err := u.write(&out); err != nil {
			return err
		}
	}

	u.outHeader.MemoryPoolsSize = uint32(pool.OutStatusSize * len(pools))
	u.outHeader.TotalSize += u.outHeader.MemoryPoolsSize

	return u.commitHeader()
}

// SkipVoices steps over the voice resource and voice sections.
func (u *StateUpdater) SkipVoices() error {
	if err := u.skip(u.inHeader.VoiceResourcesSize); err != nil {
		return err
	}

	return u.skip(u.inHeader.VoicesSize)
}

// SkipMixesAndSinks steps over the mix, sink and performance sections.
func (u *StateUpdater) SkipMixesAndSinks() error {
	for _, size := range []uint32{
		u.inHeader.MixesSize,
		u.inHeader.SinksSize,
		u.inHeader.PerformanceBufferSize,
	} {
		if err := u.skip(size); err != nil {
			return err
		}
	}

	return nil
}

// UpdateEffects applies one record per slot. A slot of another kind than
// its record is replaced first. The status layout follows the revision.
func (u *StateUpdater) UpdateEffects(
	ctx *effect.Context,
	isRendererActive bool,
	mapper effect.BufferMapper,
) error {
	count := int(ctx.GetCount())
	if uint32(count*effect.InParameterSize) != u.inHeader.EffectsSize {
		return fmt.Errorf("%w: %d effects in a section of %d bytes",
			behaviour.InvalidUpdateInfo, count, u.inHeader.EffectsSize)
	}

	version2 := u.behaviour.IsEffectInfoVersion2Supported()

	for i := 0; i < count; i++ {
		var p effect.InParameter
		if err := u.read(&p, effect.InParameterSize); err != nil {
			return err
		}

		e, err := u.updateEffect(ctx, i, &p, mapper)
		if err != nil {
			return err
		}

		status := e.StoreStatus(isRendererActive)

		if !version2 {
			if err := u.write(&effect.OutStatusVersion1{Status: status}); err != nil {
				return err
			}

			continue
		}

		if p.IsNew {
			e.InitializeResultState(ctx.GetDspState(i))
			e.InitializeResultState(ctx.GetState(i))
		}

		out := effect.OutStatusVersion2{Status: status}
		e.UpdateResultState(&out.ResultState, ctx.GetState(i))

		if err := u.write(&out); err != nil {
			return err
		}
	}

	outSize := effect.OutStatusVersion1Size
	if version2 {
		outSize = effect.OutStatusVersion2Size
	}

	u.outHeader.EffectsSize = uint32(outSize * count)
	u.outHeader.TotalSize += u.outHeader.EffectsSize

	return u.commitHeader()
}

func (u *StateUpdater) updateEffect(
	ctx *effect.Context,
	index int,
	p *effect.InParameter,
	mapper effect.BufferMapper,
) (effect.Effect, error) {
	e := ctx.GetEffect(index)

	if !e.IsTypeValid(p) {
		var err error

		e, err = ctx.Reset(index, p.Type, mapper)
		if err != nil {
			return nil, fmt.Errorf("%w: effect %d: %w",
				behaviour.InvalidUpdateInfo, index, err)
		}

		u.invokeHook(HookPosEffectReset, e, EffectUpdate{Index: index})
	}

	errorInfo, err := e.Update(p, mapper)
	if err != nil {
		return nil, fmt.Errorf("%w: effect %d: %w",
			behaviour.InvalidUpdateInfo, index, err)
	}

	if errorInfo.IsError() {
		u.behaviour.AppendError(errorInfo)
		u.invokeHook(HookPosAttachFailed, e,
			EffectUpdate{Index: index, ErrorInfo: errorInfo})
	}

	u.invokeHook(HookPosEffectUpdate, e,
		EffectUpdate{Index: index, ErrorInfo: errorInfo})

	return e, nil
}

// UpdateErrorInfo reports the errors collected so far.
func (u *StateUpdater) UpdateErrorInfo() error {
	var out ErrorInfoOutStatus
	out.ErrorInfosCount = u.behaviour.CopyErrorInfo(out.ErrorInfos[:])

	if err := u.write(&out); err != nil {
		return err
	}

	u.outHeader.BehaviourSize = ErrorInfoOutStatusSize
	u.outHeader.TotalSize += u.outHeader.BehaviourSize

	return u.commitHeader()
}

// UpdateRendererInfo reports the number of frames the renderer generated.
func (u *StateUpdater) UpdateRendererInfo(elapsedFrameCount uint64) error {
	if err := u.write(&RendererInfoOutStatus{
		ElapsedFrameCount: elapsedFrameCount,
	}); err != nil {
		return err
	}

	u.outHeader.RenderInfoSize = RendererInfoOutStatusSize
	u.outHeader.TotalSize += u.outHeader.RenderInfoSize

	return u.commitHeader()
}

// CheckConsumedSize verifies that the whole input was consumed and that the
// output matches its header.
func (u *StateUpdater) CheckConsumedSize() error {
	if uint32(u.consumed) != u.inHeader.TotalSize {
		return fmt.Errorf("%w: consumed %d input bytes, header says %d",
			behaviour.InvalidUpdateInfo, u.consumed, u.inHeader.TotalSize)
	}

	if uint32(u.written) != u.outHeader.TotalSize {
		return fmt.Errorf("%w: wrote %d output bytes, header says %d",
			behaviour.InvalidUpdateInfo, u.written, u.outHeader.TotalSize)
	}

	return nil
}
