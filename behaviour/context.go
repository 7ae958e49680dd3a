package behaviour

// BaseRevisionMagic is the "REV0" tag every user revision starts from.
const BaseRevisionMagic int32 = 'R' | 'E'<<8 | 'V'<<16 | '0'<<24

// Known renderer revision numbers. A user revision carries the number in its
// last character, see MakeRevision.
const (
	Revision1  int32 = 1
	Revision2  int32 = 2
	Revision3  int32 = 3
	Revision4  int32 = 4
	Revision5  int32 = 5
	Revision6  int32 = 6
	Revision7  int32 = 7
	Revision8  int32 = 8
	Revision9  int32 = 9
	Revision10 int32 = 10
	Revision11 int32 = 11
	Revision12 int32 = 12
	Revision13 int32 = 13

	LastRevision = Revision13
)

// MaxErrors is the number of error descriptors kept per frame.
const MaxErrors = 10

const flagMemoryPoolForceMapping uint64 = 1 << 0

// A Context records the revision the guest negotiated and the errors that
// happened during the current update.
type Context struct {
	userRevision int32
	flags        uint64
	errorInfos   [MaxErrors]ErrorInfo
	errorIndex   int
}

// NewContext creates a Context for the latest revision.
func NewContext() *Context {
	return &Context{
		userRevision: MakeRevision(LastRevision),
	}
}

// MakeRevision builds the user revision "REVn" for a revision number.
func MakeRevision(number int32) int32 {
	return BaseRevisionMagic + number<<24
}

// GetRevisionNumber strips the magic from a user revision.
func GetRevisionNumber(revision int32) int32 {
	return (revision - BaseRevisionMagic) >> 24
}

// CheckValidRevision tells if a user revision is one the renderer knows.
func CheckValidRevision(revision int32) bool {
	number := GetRevisionNumber(revision)

	return number >= Revision1 && number <= LastRevision
}

// CheckFeatureSupported tells if revision is at least supportedRevision.
// Revisions the renderer does not know are treated as revision 1.
func CheckFeatureSupported(revision int32, supportedRevision int32) bool {
	if !CheckValidRevision(revision) {
		revision = MakeRevision(Revision1)
	}

	return GetRevisionNumber(revision) >= GetRevisionNumber(supportedRevision)
}

// SetUserRevision sets the revision negotiated at initialization.
func (c *Context) SetUserRevision(revision int32) {
	c.userRevision = revision
}

// UserRevision returns the negotiated revision.
func (c *Context) UserRevision() int32 {
	return c.userRevision
}

// UpdateFlags replaces the behaviour flags sent with every update.
func (c *Context) UpdateFlags(flags uint64) {
	c.flags = flags
}

// Flags returns the current behaviour flags.
func (c *Context) Flags() uint64 {
	return c.flags
}

// IsMemoryPoolForceMappingEnabled tells if buffers outside of any pool are
// mapped directly instead of being rejected.
func (c *Context) IsMemoryPoolForceMappingEnabled() bool {
	return c.flags&flagMemoryPoolForceMapping != 0
}

// IsEffectInfoVersion2Supported tells if effects report a result state.
func (c *Context) IsEffectInfoVersion2Supported() bool {
	return CheckFeatureSupported(c.userRevision, MakeRevision(Revision9))
}

// AppendError records an error descriptor. Descriptors past MaxErrors are
// dropped.
func (c *Context) AppendError(info ErrorInfo) {
	if c.errorIndex < MaxErrors {
		c.errorInfos[c.errorIndex] = info
		c.errorIndex++
	}
}

// CopyErrorInfo copies the recorded descriptors into dst, clears the rest of
// dst and returns the number of descriptors copied.
func (c *Context) CopyErrorInfo(dst []ErrorInfo) uint32 {
	count := min(c.errorIndex, len(dst))

	copy(dst, c.errorInfos[:count])
	clear(dst[count:])

	return uint32(count)
}

// ErrorCount returns the number of recorded descriptors.
func (c *Context) ErrorCount() int {
	return c.errorIndex
}

// ClearError drops all the recorded descriptors.
func (c *Context) ClearError() {
	c.errorIndex = 0
	c.errorInfos = [MaxErrors]ErrorInfo{}
}
