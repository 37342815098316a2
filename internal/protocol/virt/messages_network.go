package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

type NetworkLookupByNameArgs struct{ Name string }

func DecodeNetworkLookupByNameArgs(r io.Reader) (NetworkLookupByNameArgs, error) {
	s, err := xdr.DecodeString(r)
	return NetworkLookupByNameArgs{Name: s}, err
}
func (a NetworkLookupByNameArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.Name) }

type NetworkLookupByUUIDArgs struct{ UUID [UUIDLen]byte }

func DecodeNetworkLookupByUUIDArgs(r io.Reader) (NetworkLookupByUUIDArgs, error) {
	uuid, err := decodeUUID(r)
	return NetworkLookupByUUIDArgs{UUID: uuid}, err
}
func (a NetworkLookupByUUIDArgs) Encode(buf *bytes.Buffer) error {
	return xdr.WriteFixedOpaque(buf, a.UUID[:])
}

// NetworkRet wraps a single NetworkDesc, the shape returned by every
// network lookup/create/define procedure.
type NetworkRet struct{ Net NetworkDesc }

func DecodeNetworkRet(r io.Reader) (NetworkRet, error) {
	n, err := DecodeNetworkDesc(r)
	return NetworkRet{Net: n}, err
}
func (a NetworkRet) Encode(buf *bytes.Buffer) error { return a.Net.Encode(buf) }

// NetworkOnlyArgs carries a single network descriptor, the argument shape
// shared by Undefine/Create/Destroy/GetAutostart/GetBridgeName.
type NetworkOnlyArgs struct{ Net NetworkDesc }

func DecodeNetworkOnlyArgs(r io.Reader) (NetworkOnlyArgs, error) {
	n, err := DecodeNetworkDesc(r)
	return NetworkOnlyArgs{Net: n}, err
}
func (a NetworkOnlyArgs) Encode(buf *bytes.Buffer) error { return a.Net.Encode(buf) }

type NetworkDefineXMLArgs struct{ XML string }

func DecodeNetworkDefineXMLArgs(r io.Reader) (NetworkDefineXMLArgs, error) {
	s, err := xdr.DecodeString(r)
	return NetworkDefineXMLArgs{XML: s}, err
}
func (a NetworkDefineXMLArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.XML) }

type NetworkGetXMLDescArgs struct {
	Net   NetworkDesc
	Flags uint32
}

func DecodeNetworkGetXMLDescArgs(r io.Reader) (NetworkGetXMLDescArgs, error) {
	var a NetworkGetXMLDescArgs
	var err error
	if a.Net, err = DecodeNetworkDesc(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint32(r)
	return a, err
}
func (a NetworkGetXMLDescArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Net.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Flags)
}

// ListNetworksArgs/Ret and ListDefinedNetworksArgs/Ret share a shape:
// a maxnames bound in, a capped name array out. NumOfNetworks and
// NumOfDefinedNetworks reuse the generic Int32Ret.
type ListNetworksArgs struct{ Maxnames int32 }

func DecodeListNetworksArgs(r io.Reader) (ListNetworksArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return ListNetworksArgs{Maxnames: v}, err
}
func (a ListNetworksArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Maxnames) }

type ListNetworksRet struct{ Names []string }

func DecodeListNetworksRet(r io.Reader) (ListNetworksRet, error) {
	names, err := xdr.DecodeStringArray(r, NetworkNameListMax)
	return ListNetworksRet{Names: names}, err
}
func (a ListNetworksRet) Encode(buf *bytes.Buffer) error { return xdr.WriteStringArray(buf, a.Names) }

type ListDefinedNetworksArgs struct{ Maxnames int32 }

func DecodeListDefinedNetworksArgs(r io.Reader) (ListDefinedNetworksArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return ListDefinedNetworksArgs{Maxnames: v}, err
}
func (a ListDefinedNetworksArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Maxnames) }

type ListDefinedNetworksRet struct{ Names []string }

func DecodeListDefinedNetworksRet(r io.Reader) (ListDefinedNetworksRet, error) {
	names, err := xdr.DecodeStringArray(r, NetworkNameListMax)
	return ListDefinedNetworksRet{Names: names}, err
}
func (a ListDefinedNetworksRet) Encode(buf *bytes.Buffer) error { return xdr.WriteStringArray(buf, a.Names) }

type NetworkSetAutostartArgs struct {
	Net       NetworkDesc
	Autostart int32
}

func DecodeNetworkSetAutostartArgs(r io.Reader) (NetworkSetAutostartArgs, error) {
	var a NetworkSetAutostartArgs
	var err error
	if a.Net, err = DecodeNetworkDesc(r); err != nil {
		return a, err
	}
	a.Autostart, err = xdr.DecodeInt32(r)
	return a, err
}
func (a NetworkSetAutostartArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Net.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, a.Autostart)
}
