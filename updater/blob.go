package updater

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/mem/pool"
)

// Input is the content of an update blob as the guest builds it.
type Input struct {
	Revision int32
	Flags    uint64
	Pools    []pool.InParameter
	Effects  []effect.InParameter
}

// Encode lays the input out as an update blob.
func (in *Input) Encode() ([]byte, error) {
	h := Header{
		Revision:        in.Revision,
		BehaviourSize:   BehaviourParameterSize,
		MemoryPoolsSize: uint32(len(in.Pools) * pool.InParameterSize),
		EffectsSize:     uint32(len(in.Effects) * effect.InParameterSize),
	}
	h.TotalSize = HeaderSize + h.BehaviourSize + h.MemoryPoolsSize +
		h.EffectsSize

	buf := bytes.NewBuffer(make([]byte, 0, h.TotalSize))
	records := []any{
		&h,
		&BehaviourParameter{UserRevision: in.Revision, Flags: in.Flags},
		in.Pools,
		in.Effects,
	}

	for _, r := range records {
		if err := binary.Write(buf, binary.LittleEndian, r); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Output is the content of a status blob.
type Output struct {
	Header            Header
	Pools             []pool.OutStatus
	EffectStatuses    []effect.Status
	ResultStates      []effect.ResultState
	Errors            []behaviour.ErrorInfo
	ElapsedFrameCount uint64
}

// DecodeOutput parses a status blob written for poolCount pools and
// effectCount slots.
func DecodeOutput(buf []byte, poolCount, effectCount int) (*Output, error) {
	out := &Output{}
	r := bytes.NewReader(buf)

	if err := binary.Read(r, binary.LittleEndian, &out.Header); err != nil {
		return nil, err
	}

	if int(out.Header.MemoryPoolsSize) != poolCount*pool.OutStatusSize {
		return nil, fmt.Errorf("status blob has %d bytes of pools for %d pools",
			out.Header.MemoryPoolsSize, poolCount)
	}

	out.Pools = make([]pool.OutStatus, poolCount)
	if err := binary.Read(r, binary.LittleEndian, out.Pools); err != nil {
		return nil, err
	}

	if err := out.decodeEffects(r, effectCount); err != nil {
		return nil, err
	}

	var errorInfo ErrorInfoOutStatus
	if err := binary.Read(r, binary.LittleEndian, &errorInfo); err != nil {
		return nil, err
	}

	count := min(int(errorInfo.ErrorInfosCount), behaviour.MaxErrors)
	out.Errors = errorInfo.ErrorInfos[:count]

	if out.Header.RenderInfoSize != 0 {
		var info RendererInfoOutStatus
		if err := binary.Read(r, binary.LittleEndian, &info); err != nil {
			return nil, err
		}

		out.ElapsedFrameCount = info.ElapsedFrameCount
	}

	return out, nil
}

func (o *Output) decodeEffects(r *bytes.Reader, effectCount int) error {
	if effectCount == 0 {
		return nil
	}

	switch int(o.Header.EffectsSize) / effectCount {
	case effect.OutStatusVersion1Size:
		records := make([]effect.OutStatusVersion1, effectCount)
		if err := binary.Read(r, binary.LittleEndian, records); err != nil {
			return err
		}

		for _, s := range records {
			o.EffectStatuses = append(o.EffectStatuses, s.Status)
		}
	case effect.OutStatusVersion2Size:
		records := make([]effect.OutStatusVersion2, effectCount)
		if err := binary.Read(r, binary.LittleEndian, records); err != nil {
			return err
		}

		for _, s := range records {
			o.EffectStatuses = append(o.EffectStatuses, s.Status)
			o.ResultStates = append(o.ResultStates, s.ResultState)
		}
	default:
		return fmt.Errorf("status blob has %d bytes of effects for %d slots",
			o.Header.EffectsSize, effectCount)
	}

	return nil
}
