package virt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// Direction distinguishes a call from a reply in the wire header.
type Direction uint32

const (
	DirectionCall  Direction = 0
	DirectionReply Direction = 1
)

func (d Direction) String() string {
	if d == DirectionReply {
		return "REPLY"
	}
	return "CALL"
}

// Status is the header's outcome field; on a CALL it is always OK, on a
// REPLY it tells the decoder whether the body is a result or an error record.
type Status uint32

const (
	StatusOK    Status = 0
	StatusError Status = 1
)

func (s Status) String() string {
	if s == StatusError {
		return "ERROR"
	}
	return "OK"
}

// Header is the fixed-shape, XDR-encoded message header that precedes every
// request and reply body.
type Header struct {
	Prog      uint32
	Vers      uint32
	Proc      uint32
	Direction Direction
	Status    Status
	Serial    uint32
}

// DecodeHeader reads a Header from r. It does not validate field values;
// that is the header validator's job (internal/rpcd/dispatch).
func DecodeHeader(r io.Reader) (Header, error) {
	var h Header
	var err error

	if h.Prog, err = xdr.DecodeUint32(r); err != nil {
		return Header{}, fmt.Errorf("decode header prog: %w", err)
	}
	if h.Vers, err = xdr.DecodeUint32(r); err != nil {
		return Header{}, fmt.Errorf("decode header vers: %w", err)
	}
	if h.Proc, err = xdr.DecodeUint32(r); err != nil {
		return Header{}, fmt.Errorf("decode header proc: %w", err)
	}
	dir, err := xdr.DecodeUint32(r)
	if err != nil {
		return Header{}, fmt.Errorf("decode header direction: %w", err)
	}
	h.Direction = Direction(dir)
	st, err := xdr.DecodeUint32(r)
	if err != nil {
		return Header{}, fmt.Errorf("decode header status: %w", err)
	}
	h.Status = Status(st)
	if h.Serial, err = xdr.DecodeUint32(r); err != nil {
		return Header{}, fmt.Errorf("decode header serial: %w", err)
	}

	return h, nil
}

// Encode writes the header in wire order.
func (h Header) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, h.Prog); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, h.Vers); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, h.Proc); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, uint32(h.Direction)); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, uint32(h.Status)); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, h.Serial)
}

// Reply builds the reply header that echoes this request's correlation
// fields, per the protocol invariant that prog/vers/proc/serial round-trip
// unchanged regardless of outcome.
func (h Header) Reply(status Status) Header {
	return Header{
		Prog:      h.Prog,
		Vers:      h.Vers,
		Proc:      h.Proc,
		Direction: DirectionReply,
		Status:    status,
		Serial:    h.Serial,
	}
}

// DefaultReplyHeader is used when no inbound header could be trusted (e.g.
// the frame was unreadable past the length word), so a best-effort reply
// still reaches the client.
func DefaultReplyHeader() Header {
	return Header{
		Prog:      RemoteProgram,
		Vers:      RemoteProtocolVersion,
		Proc:      ProcOpen,
		Direction: DirectionReply,
		Status:    StatusError,
		Serial:    1,
	}
}

// ReadFrame reads one length-prefixed frame from r: a big-endian uint32
// byte count (covering itself, the header, and the body) followed by that
// many bytes minus the 4 already consumed by the length word.
func ReadFrame(r io.Reader) ([]byte, error) {
	length, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	if length < 4 {
		return nil, fmt.Errorf("frame length %d shorter than length word", length)
	}
	if length > MaxFrameLen {
		return nil, fmt.Errorf("frame length %d exceeds maximum %d", length, MaxFrameLen)
	}

	body := make([]byte, length-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// WriteFrame prepends the length word to a fully-encoded header+body buffer
// and writes the result to w.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf bytes.Buffer
	if err := xdr.WriteUint32(&lenBuf, uint32(len(payload)+4)); err != nil {
		return fmt.Errorf("encode frame length: %w", err)
	}
	if _, err := w.Write(lenBuf.Bytes()); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}
