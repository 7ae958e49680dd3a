package pool

// UserState is the state of a memory pool as seen by the guest.
type UserState uint32

// Memory pool user states.
const (
	UserStateInvalid UserState = iota
	UserStateNew
	UserStateRequestDetach
	UserStateDetached
	UserStateRequestAttach
	UserStateAttached
	UserStateReleased
)

func (s UserState) String() string {
	switch s {
	case UserStateInvalid:
		return "Invalid"
	case UserStateNew:
		return "New"
	case UserStateRequestDetach:
		return "RequestDetach"
	case UserStateDetached:
		return "Detached"
	case UserStateRequestAttach:
		return "RequestAttach"
	case UserStateAttached:
		return "Attached"
	case UserStateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// Encoded sizes of the memory pool records.
const (
	InParameterSize = 0x20
	OutStatusSize   = 0x10
)

// InParameter is the per-frame memory pool record sent by the guest.
type InParameter struct {
	CPUAddress uint64
	Size       uint64
	State      UserState
	Reserved   uint32
	Reserved2  uint64
}

// OutStatus is the per-frame memory pool record sent back to the guest.
type OutStatus struct {
	State    UserState
	Reserved [3]uint32
}
