// Package wireerr is the error synthesizer: the single place that turns a
// driver failure, a decode failure, or an internal dispatch failure into the
// wire ErrorRecord the client sees, and writes it as a framed REPLY.
package wireerr

import (
	"bytes"
	"errors"
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
)

// FromDriverError projects a driver-level failure into a wire ErrorRecord.
// driver.Error's code/domain/level constants were chosen to match virt's
// numerically, but the packages stay independent types: this function is
// the only place that relies on that correspondence.
func FromDriverError(err error) *virt.ErrorRecord {
	var derr *driver.Error
	if errors.As(err, &derr) {
		msg := derr.Message
		return &virt.ErrorRecord{
			Code:    derr.Code,
			Domain:  virt.ErrDomainDriver,
			Level:   derr.Level,
			Message: &msg,
		}
	}
	return Internal(err)
}

// Generic builds a minimal ErrorRecord carrying a remote-domain code and
// message, used by the auth gate and header validator for protocol-level
// rejections that never reached the driver.
func Generic(code int32, message string) *virt.ErrorRecord {
	return virt.NewErrorRecord(code, message)
}

// Internal wraps an unexpected Go error (decode failure, handler panic, I/O
// failure) as a generic internal-error record. The underlying error text is
// included for diagnosability; it never carries driver-domain semantics.
func Internal(err error) *virt.ErrorRecord {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return virt.NewErrorRecord(virt.ErrCodeInternalError, msg)
}

// AuthFailed builds the ErrorRecord for a rejected pre-auth procedure call
// or a failed SASL negotiation step.
func AuthFailed(message string) *virt.ErrorRecord {
	return virt.NewErrorRecord(virt.ErrCodeAuthFailed, message)
}

// SendError encodes rec as the body of a REPLY with the given request
// header (via Header.Reply(StatusError)) and writes the framed message to
// w. It is the only path through which a failure reaches the wire.
func SendError(w io.Writer, reqHeader virt.Header, rec *virt.ErrorRecord) error {
	replyHeader := reqHeader.Reply(virt.StatusError)

	var buf bytes.Buffer
	if err := replyHeader.Encode(&buf); err != nil {
		return err
	}
	if err := rec.Encode(&buf); err != nil {
		return err
	}
	return virt.WriteFrame(w, buf.Bytes())
}

// SendDefaultError is used when the inbound header itself could not be
// trusted (the frame was truncated or malformed before the header decoded
// cleanly): it replies using DefaultReplyHeader so the client still gets a
// framed, parseable response instead of a silently closed connection.
func SendDefaultError(w io.Writer, rec *virt.ErrorRecord) error {
	return SendError(w, virt.DefaultReplyHeader(), rec)
}

// encodable is any wire result type a successful handler returns. Defined
// locally (rather than imported from internal/rpcd/dispatch) to avoid a
// package cycle; dispatch.Encodable satisfies it structurally.
type encodable interface {
	Encode(buf *bytes.Buffer) error
}

// SendReply encodes ret as the body of a REPLY with StatusOK and writes the
// framed message to w. It is the only success-path counterpart to
// SendError/SendDefaultError.
func SendReply(w io.Writer, reqHeader virt.Header, ret encodable) error {
	replyHeader := reqHeader.Reply(virt.StatusOK)

	var buf bytes.Buffer
	if err := replyHeader.Encode(&buf); err != nil {
		return err
	}
	if err := ret.Encode(&buf); err != nil {
		return err
	}
	return virt.WriteFrame(w, buf.Bytes())
}
