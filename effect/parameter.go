package effect

import (
	"encoding/binary"
	"fmt"
)

// Encoded sizes of the effect records.
const (
	SpecificDataSize      = 0xA0
	ResultStateSize       = 0x80
	InParameterSize       = 0xC0
	OutStatusVersion1Size = 0x10
	OutStatusVersion2Size = 0x90
)

// InParameter is the per-frame record the guest sends for every effect slot.
// The layout is packed and little endian.
type InParameter struct {
	Type            Type
	IsNew           bool
	IsEnabled       bool
	Reserved1       uint8
	MixID           int32
	BufferBase      uint64
	BufferSize      uint64
	ProcessingOrder uint32
	Reserved2       [4]byte
	SpecificData    [SpecificDataSize]byte
}

// ResultState is the kind-specific blob reported back to the guest from
// revision 9.
type ResultState [ResultStateSize]byte

// OutStatusVersion1 is the per-frame record sent back to the guest before
// revision 9.
type OutStatusVersion1 struct {
	Status   Status
	Reserved [15]byte
}

// OutStatusVersion2 is the per-frame record sent back to the guest from
// revision 9.
type OutStatusVersion2 struct {
	Status      Status
	Reserved    [15]byte
	ResultState ResultState
}

// DecodeInParameter reads an InParameter from the start of buf.
func DecodeInParameter(buf []byte) (InParameter, error) {
	var p InParameter

	if len(buf) < InParameterSize {
		return p, fmt.Errorf("effect parameter needs %d bytes, got %d",
			InParameterSize, len(buf))
	}

	_, err := binary.Decode(buf[:InParameterSize], binary.LittleEndian, &p)

	return p, err
}

// Encode appends the wire form of the parameter to buf.
func (p *InParameter) Encode(buf []byte) ([]byte, error) {
	return binary.Append(buf, binary.LittleEndian, p)
}

// DecodeSpecific reads the kind-specific payload of p as a T.
func DecodeSpecific[T any](p *InParameter) (T, error) {
	var v T

	_, err := binary.Decode(p.SpecificData[:], binary.LittleEndian, &v)
	if err != nil {
		return v, fmt.Errorf("decoding %s payload: %w", p.Type, err)
	}

	return v, nil
}

// EncodeSpecific writes v as the kind-specific payload of p.
func EncodeSpecific[T any](p *InParameter, v T) error {
	clear(p.SpecificData[:])

	_, err := binary.Encode(p.SpecificData[:], binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", p.Type, err)
	}

	return nil
}

// DecodeResultState reads a kind-specific result state such as
// LimiterStatistics.
func DecodeResultState[T any](state *ResultState) (T, error) {
	var v T

	_, err := binary.Decode(state[:], binary.LittleEndian, &v)

	return v, err
}

// EncodeResultState writes a kind-specific result state.
func EncodeResultState[T any](state *ResultState, v T) error {
	clear(state[:])

	_, err := binary.Encode(state[:], binary.LittleEndian, v)

	return err
}
