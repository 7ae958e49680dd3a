package renderer

import (
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/mem/pool"
)

// EffectSnapshot is a copy of the state of one slot.
type EffectSnapshot struct {
	Index           int              `json:"index"`
	NodeID          uint32           `json:"node_id"`
	Type            effect.Type      `json:"-"`
	Kind            string           `json:"kind"`
	IsEnabled       bool             `json:"is_enabled"`
	UsageState      string           `json:"usage_state"`
	BufferUnmapped  bool             `json:"buffer_unmapped"`
	MixID           int32            `json:"mix_id"`
	ProcessingOrder uint32           `json:"processing_order"`
	Buffers         []BufferSnapshot `json:"buffers"`
}

// BufferSnapshot is a copy of one work buffer descriptor.
type BufferSnapshot struct {
	CPUAddress uint64 `json:"cpu_address"`
	Size       uint64 `json:"size"`
	DSPAddress uint64 `json:"dsp_address"`
}

// PoolSnapshot is a copy of the state of one memory pool.
type PoolSnapshot struct {
	Index      int    `json:"index"`
	CPUAddress uint64 `json:"cpu_address"`
	Size       uint64 `json:"size"`
	DSPAddress uint64 `json:"dsp_address"`
	IsUsed     bool   `json:"is_used"`
}

// Effects returns a copy of the state of every slot.
func (s *System) Effects() []EffectSnapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.isInitialized {
		return nil
	}

	snapshots := make([]EffectSnapshot, 0, s.effects.GetCount())
	for i, e := range s.effects.Effects() {
		snapshots = append(snapshots, snapshotEffect(i, e))
	}

	return snapshots
}

// InspectEffect calls inspect with the slot at index while holding the
// renderer lock, so no frame runs until inspect returns. inspect must not
// keep the slot or call back into the renderer. It returns false if there is
// no such slot.
func (s *System) InspectEffect(index int, inspect func(e effect.Effect)) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.isInitialized || index < 0 || index >= int(s.effects.GetCount()) {
		return false
	}

	inspect(s.effects.GetEffect(index))

	return true
}

func snapshotEffect(index int, e effect.Effect) EffectSnapshot {
	base := e.Base()

	snapshot := EffectSnapshot{
		Index:           index,
		NodeID:          base.NodeID,
		Type:            e.Type(),
		Kind:            e.Type().String(),
		IsEnabled:       base.IsEnabled,
		UsageState:      base.UsageState.String(),
		BufferUnmapped:  base.BufferUnmapped,
		MixID:           base.MixID,
		ProcessingOrder: base.ProcessingOrder,
	}

	for i := range base.WorkBuffers {
		info := &base.WorkBuffers[i]
		snapshot.Buffers = append(snapshot.Buffers, BufferSnapshot{
			CPUAddress: info.CPUAddress,
			Size:       info.Size,
			DSPAddress: info.GetReference(false),
		})
	}

	return snapshot
}

// Pools returns a copy of the state of every memory pool.
func (s *System) Pools() []PoolSnapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	snapshots := make([]PoolSnapshot, 0, len(s.pools))
	for i := range s.pools {
		snapshots = append(snapshots, snapshotPool(i, &s.pools[i]))
	}

	return snapshots
}

func snapshotPool(index int, p *pool.State) PoolSnapshot {
	return PoolSnapshot{
		Index:      index,
		CPUAddress: p.CPUAddress,
		Size:       p.Size,
		DSPAddress: p.DSPAddress(),
		IsUsed:     p.IsUsed(),
	}
}
