package datarecording

import (
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/renderer"
	"github.com/sarchlab/audren/updater"
)

// Table names used by EffectRecorder.
const (
	EffectEventTable = "effect_event"
	CommandTable     = "command"
)

// EffectEvent is a row of the effect_event table. It is written every time
// the updater touches a slot.
type EffectEvent struct {
	Frame          uint64
	Slot           int
	Event          string
	Kind           string
	IsEnabled      bool
	UsageState     string
	BufferUnmapped bool
	ErrorCode      string
	ErrorAddress   uint64
}

// CommandEntry is a row of the command table. It is written for every slot
// of the command view of a frame.
type CommandEntry struct {
	Frame           uint64
	Position        int
	Slot            int
	NodeID          uint32
	Kind            string
	MixID           int32
	ProcessingOrder uint32
	UsageState      string
	BufferCount     int
	WorkBuffer      uint64
}

// EffectRecorder is a hook that records slot updates and command views. It
// should be attached to a renderer.System.
type EffectRecorder struct {
	recorder DataRecorder
	frame    uint64
}

// NewEffectRecorder creates the tables of an EffectRecorder in recorder.
func NewEffectRecorder(recorder DataRecorder) (*EffectRecorder, error) {
	if err := recorder.CreateTable(EffectEventTable, EffectEvent{}); err != nil {
		return nil, err
	}

	if err := recorder.CreateTable(CommandTable, CommandEntry{}); err != nil {
		return nil, err
	}

	return &EffectRecorder{recorder: recorder}, nil
}

// Func records the hook context.
func (r *EffectRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case updater.HookPosEffectUpdate,
		updater.HookPosEffectReset,
		updater.HookPosAttachFailed:
		r.recordEffectEvent(ctx)
	case renderer.HookPosFrameEnd:
		r.recordCommands(ctx)
	}
}

func (r *EffectRecorder) recordEffectEvent(ctx hooking.HookCtx) {
	e, ok := ctx.Item.(effect.Effect)
	if !ok {
		return
	}

	detail, _ := ctx.Detail.(updater.EffectUpdate)
	base := e.Base()

	entry := EffectEvent{
		Frame:          r.frame,
		Slot:           detail.Index,
		Event:          ctx.Pos.Name,
		Kind:           e.Type().String(),
		IsEnabled:      base.IsEnabled,
		UsageState:     base.UsageState.String(),
		BufferUnmapped: base.BufferUnmapped,
	}

	if detail.ErrorInfo.IsError() {
		entry.ErrorCode = detail.ErrorInfo.ErrorCode.String()
		entry.ErrorAddress = detail.ErrorInfo.ExtraErrorInfo
	}

	r.recorder.InsertData(EffectEventTable, entry)
}

func (r *EffectRecorder) recordCommands(ctx hooking.HookCtx) {
	frame, _ := ctx.Item.(uint64)
	targets, _ := ctx.Detail.([]renderer.CommandTarget)

	for i, t := range targets {
		entry := CommandEntry{
			Frame:           frame,
			Position:        i,
			Slot:            t.Index,
			NodeID:          t.NodeID,
			Kind:            t.Type.String(),
			MixID:           t.MixID,
			ProcessingOrder: t.ProcessingOrder,
			UsageState:      t.UsageState.String(),
			BufferCount:     len(t.WorkBuffers),
		}

		if len(t.WorkBuffers) > 0 {
			entry.WorkBuffer = t.WorkBuffers[0]
		}

		r.recorder.InsertData(CommandTable, entry)
	}

	r.frame = frame + 1
}
