package updater

import "github.com/sarchlab/audren/behaviour"

// Encoded sizes of the update records.
const (
	HeaderSize                = 0x40
	BehaviourParameterSize    = 0x10
	ErrorInfoOutStatusSize    = 0xC0
	RendererInfoOutStatusSize = 0x10
)

// Header starts both the update blob the guest sends and the status blob
// sent back. Each size is the byte length of its section.
type Header struct {
	Revision              int32
	BehaviourSize         uint32
	MemoryPoolsSize       uint32
	VoicesSize            uint32
	VoiceResourcesSize    uint32
	EffectsSize           uint32
	MixesSize             uint32
	SinksSize             uint32
	PerformanceBufferSize uint32
	Unknown24             uint32
	RenderInfoSize        uint32
	Reserved              [4]uint32
	TotalSize             uint32
}

// BehaviourParameter is the behaviour section of the update blob.
type BehaviourParameter struct {
	UserRevision int32
	Padding      uint32
	Flags        uint64
}

// ErrorInfoOutStatus reports the errors collected during an update.
type ErrorInfoOutStatus struct {
	ErrorInfos      [behaviour.MaxErrors]behaviour.ErrorInfo
	ErrorInfosCount uint32
	Reserved        [7]uint32
}

// RendererInfoOutStatus reports the progress of the renderer.
type RendererInfoOutStatus struct {
	ElapsedFrameCount uint64
	Reserved          uint64
}
