package d3d12

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// HRESULT is a platform status code. Negative values are failures.
type HRESULT int32

const (
	SOK                    HRESULT = 0
	SFalse                 HRESULT = 1
	EFail                  HRESULT = -0x7FFFBFFB // 0x80004005
	EOutOfMemory           HRESULT = -0x7FF8FFF2 // 0x8007000E
	EInvalidArg            HRESULT = -0x7FF8FFA9 // 0x80070057
	DXGIErrorDeviceRemoved HRESULT = -0x7785FFFB // 0x887A0005
)

func (hr HRESULT) Failed() bool {
	return hr < 0
}

func (hr HRESULT) Error() string {
	return fmt.Sprintf("HRESULT 0x%08X", uint32(hr))
}

// HRError is a failed driver call together with what was being attempted.
type HRError struct {
	Msg   string
	HR    HRESULT
	cause error
}

func (e *HRError) Error() string {
	return fmt.Sprintf("%s (%08X)", e.Msg, uint32(e.HR))
}

func (e *HRError) Unwrap() error {
	return e.cause
}

func newHRError(msg string, cause error) error {
	hr := EFail
	if cause == nil {
		cause = hr
	} else {
		errors.As(cause, &hr)
	}
	return &HRError{Msg: msg, HR: hr, cause: cause}
}

// StatusCode extracts the platform status code carried by err, if any.
func StatusCode(err error) (HRESULT, bool) {
	var hrErr *HRError
	if errors.As(err, &hrErr) {
		return hrErr.HR, true
	}
	var hr HRESULT
	if errors.As(err, &hr) {
		return hr, true
	}
	return SOK, false
}

var (
	// ErrLayoutLimit is returned when a root signature would exceed the
	// parameter or descriptor range budget.
	ErrLayoutLimit = errors.New("root signature layout limit exceeded")
	// ErrSerializeRootSignature marks failures of the root signature
	// serializer. Serializer diagnostics are attached as error details.
	ErrSerializeRootSignature = errors.New("root signature serialization failed")

	ErrInvalidHeapType        = errors.New("invalid descriptor heap type")
	ErrInvalidDescriptor      = errors.New("invalid staging descriptor")
	ErrDescriptorNotAllocated = errors.New("staging descriptor is not currently allocated")
	ErrDescriptorForeign      = errors.New("staging descriptor belongs to another pool")
	ErrPoolDestroyed          = errors.New("staging descriptor pool destroyed")
)
