package virt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// Void is the argument or result type for procedures with no payload.
type Void struct{}

// DecodeVoid reads nothing; it exists so every procedure table entry can
// hold a decoder function with a uniform signature.
func DecodeVoid(r io.Reader) (Void, error) { return Void{}, nil }

// Encode writes nothing.
func (Void) Encode(buf *bytes.Buffer) error { return nil }

func decodeUUID(r io.Reader) ([UUIDLen]byte, error) {
	var uuid [UUIDLen]byte
	b, err := xdr.DecodeFixedOpaque(r, UUIDLen)
	if err != nil {
		return uuid, fmt.Errorf("decode uuid: %w", err)
	}
	copy(uuid[:], b)
	return uuid, nil
}
