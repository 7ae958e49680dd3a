package scenario

import (
	"fmt"

	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/mem/pool"
	"github.com/sarchlab/audren/updater"
	"gopkg.in/yaml.v3"
)

const flagMemoryPoolForceMapping = 1 << 0

// A Player holds the update blobs of a scenario and hands them out frame by
// frame.
type Player struct {
	blobs [][]byte
}

// Compile builds the update blob of every frame of s.
func Compile(s *Scenario) (*Player, error) {
	cfg := s.Config()

	in := &updater.Input{
		Revision: cfg.Revision,
		Pools:    make([]pool.InParameter, cfg.MemoryPoolCount()),
		Effects:  make([]effect.InParameter, cfg.EffectCount),
	}

	if s.ForceMapping {
		in.Flags |= flagMemoryPoolForceMapping
	}

	p := &Player{}

	for i, f := range s.Frames {
		applyPools(in, f.Pools)

		if err := applyEffects(in, f.Effects); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		for r := 0; r < max(f.Repeat, 1); r++ {
			blob, err := in.Encode()
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}

			p.blobs = append(p.blobs, blob)
			settle(in)
		}
	}

	return p, nil
}

func applyPools(in *updater.Input, requests []PoolRequest) {
	for _, r := range requests {
		record := &in.Pools[r.Index]
		record.CPUAddress = r.Address
		record.Size = r.Size

		switch r.Action {
		case ActionAttach:
			record.State = pool.UserStateRequestAttach
		case ActionDetach:
			record.State = pool.UserStateRequestDetach
		}
	}
}

func applyEffects(in *updater.Input, records []EffectRecord) error {
	for _, r := range records {
		kind, err := effect.ParseType(r.Type)
		if err != nil {
			return err
		}

		p := effect.InParameter{
			Type:            kind,
			IsNew:           r.New,
			IsEnabled:       r.Enabled,
			MixID:           r.MixID,
			ProcessingOrder: r.Order,
			BufferBase:      r.Buffer,
			BufferSize:      r.BufferSize,
		}

		if err := encodeParams(&p, &r.Params); err != nil {
			return fmt.Errorf("effect %d: %w", r.Index, err)
		}

		in.Effects[r.Index] = p
	}

	return nil
}

// settle turns the one-shot requests of a sent frame into the states the
// guest keeps afterwards.
func settle(in *updater.Input) {
	for i := range in.Pools {
		switch in.Pools[i].State {
		case pool.UserStateRequestAttach:
			in.Pools[i].State = pool.UserStateAttached
		case pool.UserStateRequestDetach:
			in.Pools[i].State = pool.UserStateDetached
		}
	}

	for i := range in.Effects {
		in.Effects[i].IsNew = false
	}
}

func encodeParams(p *effect.InParameter, node *yaml.Node) error {
	switch p.Type {
	case effect.TypeBufferMix:
		return encodeAs[effect.BufferMixParameter](p, node)
	case effect.TypeAuxiliaryBuffer, effect.TypeCaptureBuffer:
		return encodeAs[effect.AuxiliaryBufferParameter](p, node)
	case effect.TypeDelay:
		return encodeAs[effect.DelayParameter](p, node)
	case effect.TypeReverb:
		return encodeAs[effect.ReverbParameter](p, node)
	case effect.TypeReverb3d:
		return encodeAs[effect.Reverb3dParameter](p, node)
	case effect.TypeBiquadFilter:
		return encodeAs[effect.BiquadFilterParameter](p, node)
	case effect.TypeLimiter:
		return encodeAs[effect.LimiterParameter](p, node)
	case effect.TypeCompressor:
		return encodeAs[effect.CompressorParameter](p, node)
	default:
		return nil
	}
}

func encodeAs[T any](p *effect.InParameter, node *yaml.Node) error {
	var v T

	if node.Kind != 0 {
		if err := node.Decode(&v); err != nil {
			return err
		}
	}

	return effect.EncodeSpecific(p, v)
}

// FrameCount returns the number of frames the player holds.
func (p *Player) FrameCount() uint64 {
	return uint64(len(p.blobs))
}

// NextFrame returns the update blob of a frame.
func (p *Player) NextFrame(frame uint64) ([]byte, bool) {
	if frame >= uint64(len(p.blobs)) {
		return nil, false
	}

	return p.blobs[frame], true
}
