package effect

import "fmt"

// Type is the kind of an effect slot.
type Type uint8

// Effect kinds.
const (
	TypeInvalid Type = iota
	TypeBufferMix
	TypeAuxiliaryBuffer
	TypeDelay
	TypeReverb
	TypeReverb3d
	TypeBiquadFilter
	TypeLimiter
	TypeCaptureBuffer
	TypeCompressor
)

var typeNames = [...]string{
	TypeInvalid:         "Invalid",
	TypeBufferMix:       "BufferMix",
	TypeAuxiliaryBuffer: "AuxiliaryBuffer",
	TypeDelay:           "Delay",
	TypeReverb:          "Reverb",
	TypeReverb3d:        "Reverb3d",
	TypeBiquadFilter:    "BiquadFilter",
	TypeLimiter:         "Limiter",
	TypeCaptureBuffer:   "CaptureBuffer",
	TypeCompressor:      "Compressor",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType converts a kind name back to a Type.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}

	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// UsageState is the state of a slot as resolved for command generation.
type UsageState uint8

// Usage states.
const (
	UsageStateInvalid UsageState = iota
	UsageStateNew
	UsageStateEnabled
	UsageStateDisabled
)

func (s UsageState) String() string {
	switch s {
	case UsageStateInvalid:
		return "Invalid"
	case UsageStateNew:
		return "New"
	case UsageStateEnabled:
		return "Enabled"
	case UsageStateDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("UsageState(%d)", uint8(s))
	}
}

// Status is the state of a slot as reported back to the guest.
type Status uint8

// Reported statuses.
const (
	StatusEnabled  Status = 3
	StatusDisabled Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "Enabled"
	case StatusDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

const nodeTypeEffect = 4

// NodeID returns the node id of the effect slot at index.
func NodeID(index int) uint32 {
	return nodeTypeEffect<<28 | uint32(index)
}

// UnusedMixID marks a slot that is not attached to any mix.
const UnusedMixID int32 = 0x7FFFFFFF

// ChannelCount is any of the integer widths used for channel counts.
type ChannelCount interface {
	~uint8 | ~uint16 | ~uint32 | ~int32
}

// IsChannelCountValid tells if an effect can run on count channels.
func IsChannelCountValid[T ChannelCount](count T) bool {
	return count == 1 || count == 2 || count == 4 || count == 6
}
