package virt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// DomainDesc is the three-field wire identity of a domain: name, UUID, and
// the driver-assigned numeric id (-1 for inactive/defined-only domains).
type DomainDesc struct {
	Name string
	UUID [UUIDLen]byte
	ID   int32
}

// DecodeDomainDesc reads a DomainDesc from r.
func DecodeDomainDesc(r io.Reader) (DomainDesc, error) {
	var d DomainDesc
	var err error

	if d.Name, err = xdr.DecodeString(r); err != nil {
		return DomainDesc{}, fmt.Errorf("decode domain name: %w", err)
	}
	uuidBytes, err := xdr.DecodeFixedOpaque(r, UUIDLen)
	if err != nil {
		return DomainDesc{}, fmt.Errorf("decode domain uuid: %w", err)
	}
	copy(d.UUID[:], uuidBytes)
	if d.ID, err = xdr.DecodeInt32(r); err != nil {
		return DomainDesc{}, fmt.Errorf("decode domain id: %w", err)
	}
	return d, nil
}

// Encode writes a DomainDesc in wire order.
func (d DomainDesc) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, d.Name); err != nil {
		return err
	}
	if err := xdr.WriteFixedOpaque(buf, d.UUID[:]); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, d.ID)
}

// NetworkDesc is the two-field wire identity of a network: name and UUID.
type NetworkDesc struct {
	Name string
	UUID [UUIDLen]byte
}

// DecodeNetworkDesc reads a NetworkDesc from r.
func DecodeNetworkDesc(r io.Reader) (NetworkDesc, error) {
	var n NetworkDesc
	var err error

	if n.Name, err = xdr.DecodeString(r); err != nil {
		return NetworkDesc{}, fmt.Errorf("decode network name: %w", err)
	}
	uuidBytes, err := xdr.DecodeFixedOpaque(r, UUIDLen)
	if err != nil {
		return NetworkDesc{}, fmt.Errorf("decode network uuid: %w", err)
	}
	copy(n.UUID[:], uuidBytes)
	return n, nil
}

// Encode writes a NetworkDesc in wire order.
func (n NetworkDesc) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, n.Name); err != nil {
		return err
	}
	return xdr.WriteFixedOpaque(buf, n.UUID[:])
}
