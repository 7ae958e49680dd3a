// Package behaviour holds the result codes, error descriptors and revision
// handling shared by every part of the renderer.
package behaviour

import "fmt"

const (
	moduleID       = 153
	errorCodeShift = 9
)

// ResultCode is a renderer result as reported to the guest.
type ResultCode int32

// Result codes understood by the guest.
const (
	Success                 ResultCode = 0
	DeviceNotFound          ResultCode = (1 << errorCodeShift) | moduleID
	OperationFailed         ResultCode = (2 << errorCodeShift) | moduleID
	UnsupportedSampleRate   ResultCode = (3 << errorCodeShift) | moduleID
	WorkBufferTooSmall      ResultCode = (4 << errorCodeShift) | moduleID
	InvalidUpdateInfo       ResultCode = (41 << errorCodeShift) | moduleID
	InvalidAddressInfo      ResultCode = (42 << errorCodeShift) | moduleID
	InvalidMixSorting       ResultCode = (43 << errorCodeShift) | moduleID
	UnsupportedOperation    ResultCode = (513 << errorCodeShift) | moduleID
	InvalidExecutionContext ResultCode = (514 << errorCodeShift) | moduleID
)

var resultNames = map[ResultCode]string{
	Success:                 "Success",
	DeviceNotFound:          "DeviceNotFound",
	OperationFailed:         "OperationFailed",
	UnsupportedSampleRate:   "UnsupportedSampleRate",
	WorkBufferTooSmall:      "WorkBufferTooSmall",
	InvalidUpdateInfo:       "InvalidUpdateInfo",
	InvalidAddressInfo:      "InvalidAddressInfo",
	InvalidMixSorting:       "InvalidMixSorting",
	UnsupportedOperation:    "UnsupportedOperation",
	InvalidExecutionContext: "InvalidExecutionContext",
}

// String returns the name of the result code.
func (c ResultCode) String() string {
	if name, ok := resultNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ResultCode(0x%x)", int32(c))
}

// Error makes a ResultCode usable as an error.
func (c ResultCode) Error() string {
	return "audio renderer: " + c.String()
}

// IsSuccess tells if the code reports success.
func (c ResultCode) IsSuccess() bool {
	return c == Success
}

// ErrorInfo describes a recoverable failure reported back to the guest. The
// layout matches the guest record and must stay 16 bytes.
type ErrorInfo struct {
	ErrorCode      ResultCode
	Padding        int32
	ExtraErrorInfo uint64
}

// ErrorInfoSize is the encoded size of an ErrorInfo.
const ErrorInfoSize = 0x10

// NewErrorInfo creates an ErrorInfo with the given code and extra value.
func NewErrorInfo(code ResultCode, extra uint64) ErrorInfo {
	return ErrorInfo{ErrorCode: code, ExtraErrorInfo: extra}
}

// IsError tells if the descriptor carries a failure.
func (e ErrorInfo) IsError() bool {
	return e.ErrorCode != Success
}

func (e ErrorInfo) String() string {
	return fmt.Sprintf("%s (0x%x)", e.ErrorCode, e.ExtraErrorInfo)
}
