package virt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// Error codes carried in the wire ErrorRecord's Code field. These mirror the
// taxonomy from the error handling design: protocol errors, auth errors, and
// a generic internal-failure bucket. Driver errors pass their own code
// through verbatim (see internal/driver.Error).
const (
	ErrCodeRPC           int32 = 1
	ErrCodeNoMemory      int32 = 2
	ErrCodeAuthFailed    int32 = 3
	ErrCodeInternalError int32 = 4
	ErrCodeNoDomain      int32 = 5
	ErrCodeNoNetwork     int32 = 6
	ErrCodeOperationInvalid int32 = 7
)

// Error domains carried in the wire ErrorRecord's Domain field.
const (
	ErrDomainRemote int32 = 1
	ErrDomainDriver int32 = 2
)

// Error levels carried in the wire ErrorRecord's Level field.
const (
	ErrLevelWarning int32 = 1
	ErrLevelError   int32 = 2
)

// ErrorRecord is the uniform on-wire error body. Exactly one of Dom/Net is
// meaningful, and only when the failing operation targeted a domain or
// network respectively; both may be nil.
type ErrorRecord struct {
	Code    int32
	Domain  int32
	Level   int32
	Message *string
	Str1    *string
	Str2    *string
	Str3    *string
	Int1    int32
	Int2    int32
	Dom     *DomainDesc
	Net     *NetworkDesc
}

// NewErrorRecord builds a minimal error record from a code and message, the
// shape produced by the dispatch-level SendError helper.
func NewErrorRecord(code int32, message string) *ErrorRecord {
	return &ErrorRecord{
		Code:    code,
		Domain:  ErrDomainRemote,
		Level:   ErrLevelError,
		Message: &message,
	}
}

func encodeOptionalString(buf *bytes.Buffer, s *string) error {
	if err := xdr.WriteOptionalPresence(buf, s != nil); err != nil {
		return err
	}
	if s != nil {
		return xdr.WriteXDRString(buf, *s)
	}
	return nil
}

func decodeOptionalString(r io.Reader) (*string, error) {
	present, err := xdr.DecodeOptionalPresence(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	s, err := xdr.DecodeString(r)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes the ErrorRecord in wire order.
func (e *ErrorRecord) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteInt32(buf, e.Code); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, e.Domain); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, e.Level); err != nil {
		return err
	}
	if err := encodeOptionalString(buf, e.Message); err != nil {
		return fmt.Errorf("encode error message: %w", err)
	}
	if err := encodeOptionalString(buf, e.Str1); err != nil {
		return fmt.Errorf("encode error str1: %w", err)
	}
	if err := encodeOptionalString(buf, e.Str2); err != nil {
		return fmt.Errorf("encode error str2: %w", err)
	}
	if err := encodeOptionalString(buf, e.Str3); err != nil {
		return fmt.Errorf("encode error str3: %w", err)
	}
	if err := xdr.WriteInt32(buf, e.Int1); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, e.Int2); err != nil {
		return err
	}

	if err := xdr.WriteOptionalPresence(buf, e.Dom != nil); err != nil {
		return err
	}
	if e.Dom != nil {
		if err := e.Dom.Encode(buf); err != nil {
			return fmt.Errorf("encode error dom: %w", err)
		}
	}

	if err := xdr.WriteOptionalPresence(buf, e.Net != nil); err != nil {
		return err
	}
	if e.Net != nil {
		if err := e.Net.Encode(buf); err != nil {
			return fmt.Errorf("encode error net: %w", err)
		}
	}

	return nil
}

// DecodeErrorRecord reads an ErrorRecord from r.
func DecodeErrorRecord(r io.Reader) (*ErrorRecord, error) {
	e := &ErrorRecord{}
	var err error

	if e.Code, err = xdr.DecodeInt32(r); err != nil {
		return nil, fmt.Errorf("decode error code: %w", err)
	}
	if e.Domain, err = xdr.DecodeInt32(r); err != nil {
		return nil, fmt.Errorf("decode error domain: %w", err)
	}
	if e.Level, err = xdr.DecodeInt32(r); err != nil {
		return nil, fmt.Errorf("decode error level: %w", err)
	}
	if e.Message, err = decodeOptionalString(r); err != nil {
		return nil, fmt.Errorf("decode error message: %w", err)
	}
	if e.Str1, err = decodeOptionalString(r); err != nil {
		return nil, fmt.Errorf("decode error str1: %w", err)
	}
	if e.Str2, err = decodeOptionalString(r); err != nil {
		return nil, fmt.Errorf("decode error str2: %w", err)
	}
	if e.Str3, err = decodeOptionalString(r); err != nil {
		return nil, fmt.Errorf("decode error str3: %w", err)
	}
	if e.Int1, err = xdr.DecodeInt32(r); err != nil {
		return nil, fmt.Errorf("decode error int1: %w", err)
	}
	if e.Int2, err = xdr.DecodeInt32(r); err != nil {
		return nil, fmt.Errorf("decode error int2: %w", err)
	}

	hasDom, err := xdr.DecodeOptionalPresence(r)
	if err != nil {
		return nil, fmt.Errorf("decode error has-dom: %w", err)
	}
	if hasDom {
		d, err := DecodeDomainDesc(r)
		if err != nil {
			return nil, fmt.Errorf("decode error dom: %w", err)
		}
		e.Dom = &d
	}

	hasNet, err := xdr.DecodeOptionalPresence(r)
	if err != nil {
		return nil, fmt.Errorf("decode error has-net: %w", err)
	}
	if hasNet {
		n, err := DecodeNetworkDesc(r)
		if err != nil {
			return nil, fmt.Errorf("decode error net: %w", err)
		}
		e.Net = &n
	}

	return e, nil
}
