package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

type DomainLookupByIDArgs struct{ ID int32 }

func DecodeDomainLookupByIDArgs(r io.Reader) (DomainLookupByIDArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return DomainLookupByIDArgs{ID: v}, err
}
func (a DomainLookupByIDArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.ID) }

type DomainLookupByNameArgs struct{ Name string }

func DecodeDomainLookupByNameArgs(r io.Reader) (DomainLookupByNameArgs, error) {
	s, err := xdr.DecodeString(r)
	return DomainLookupByNameArgs{Name: s}, err
}
func (a DomainLookupByNameArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.Name) }

type DomainLookupByUUIDArgs struct{ UUID [UUIDLen]byte }

func DecodeDomainLookupByUUIDArgs(r io.Reader) (DomainLookupByUUIDArgs, error) {
	uuid, err := decodeUUID(r)
	return DomainLookupByUUIDArgs{UUID: uuid}, err
}
func (a DomainLookupByUUIDArgs) Encode(buf *bytes.Buffer) error {
	return xdr.WriteFixedOpaque(buf, a.UUID[:])
}

// DomainRet wraps a single DomainDesc, the common shape returned by every
// lookup/create/define procedure.
type DomainRet struct{ Dom DomainDesc }

func DecodeDomainRet(r io.Reader) (DomainRet, error) {
	d, err := DecodeDomainDesc(r)
	return DomainRet{Dom: d}, err
}
func (a DomainRet) Encode(buf *bytes.Buffer) error { return a.Dom.Encode(buf) }

type NumOfDomainsRet struct{ Num int32 }

func DecodeNumOfDomainsRet(r io.Reader) (NumOfDomainsRet, error) {
	v, err := xdr.DecodeInt32(r)
	return NumOfDomainsRet{Num: v}, err
}
func (a NumOfDomainsRet) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Num) }

type ListDomainsArgs struct{ Maxids int32 }

func DecodeListDomainsArgs(r io.Reader) (ListDomainsArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return ListDomainsArgs{Maxids: v}, err
}
func (a ListDomainsArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Maxids) }

type ListDomainsRet struct{ IDs []int32 }

func DecodeListDomainsRet(r io.Reader) (ListDomainsRet, error) {
	ids, err := xdr.DecodeUint32Array(r, DomainIDListMax)
	if err != nil {
		return ListDomainsRet{}, err
	}
	out := make([]int32, len(ids))
	for i, v := range ids {
		out[i] = int32(v)
	}
	return ListDomainsRet{IDs: out}, nil
}
func (a ListDomainsRet) Encode(buf *bytes.Buffer) error {
	vals := make([]uint32, len(a.IDs))
	for i, v := range a.IDs {
		vals[i] = uint32(v)
	}
	return xdr.WriteUint32Array(buf, vals)
}

type NumOfDefinedDomainsRet struct{ Num int32 }

func DecodeNumOfDefinedDomainsRet(r io.Reader) (NumOfDefinedDomainsRet, error) {
	v, err := xdr.DecodeInt32(r)
	return NumOfDefinedDomainsRet{Num: v}, err
}
func (a NumOfDefinedDomainsRet) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Num) }

type ListDefinedDomainsArgs struct{ Maxnames int32 }

func DecodeListDefinedDomainsArgs(r io.Reader) (ListDefinedDomainsArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return ListDefinedDomainsArgs{Maxnames: v}, err
}
func (a ListDefinedDomainsArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Maxnames) }

type ListDefinedDomainsRet struct{ Names []string }

func DecodeListDefinedDomainsRet(r io.Reader) (ListDefinedDomainsRet, error) {
	names, err := xdr.DecodeStringArray(r, DomainNameListMax)
	return ListDefinedDomainsRet{Names: names}, err
}
func (a ListDefinedDomainsRet) Encode(buf *bytes.Buffer) error { return xdr.WriteStringArray(buf, a.Names) }
