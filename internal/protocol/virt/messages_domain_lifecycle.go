package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

type DomainCreateLinuxArgs struct {
	XMLDesc string
	Flags   uint32
}

func DecodeDomainCreateLinuxArgs(r io.Reader) (DomainCreateLinuxArgs, error) {
	var a DomainCreateLinuxArgs
	var err error
	if a.XMLDesc, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint32(r)
	return a, err
}
func (a DomainCreateLinuxArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, a.XMLDesc); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Flags)
}

type DomainDefineXMLArgs struct{ XML string }

func DecodeDomainDefineXMLArgs(r io.Reader) (DomainDefineXMLArgs, error) {
	s, err := xdr.DecodeString(r)
	return DomainDefineXMLArgs{XML: s}, err
}
func (a DomainDefineXMLArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.XML) }

// DomainOnlyArgs carries a single domain descriptor, the argument shape
// shared by Undefine/Create/Destroy/Shutdown/Suspend/Resume.
type DomainOnlyArgs struct{ Dom DomainDesc }

func DecodeDomainOnlyArgs(r io.Reader) (DomainOnlyArgs, error) {
	d, err := DecodeDomainDesc(r)
	return DomainOnlyArgs{Dom: d}, err
}
func (a DomainOnlyArgs) Encode(buf *bytes.Buffer) error { return a.Dom.Encode(buf) }

type DomainRebootArgs struct {
	Dom   DomainDesc
	Flags uint32
}

func DecodeDomainRebootArgs(r io.Reader) (DomainRebootArgs, error) {
	var a DomainRebootArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint32(r)
	return a, err
}
func (a DomainRebootArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Flags)
}

type DomainSaveArgs struct {
	Dom DomainDesc
	To  string
}

func DecodeDomainSaveArgs(r io.Reader) (DomainSaveArgs, error) {
	var a DomainSaveArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.To, err = xdr.DecodeString(r)
	return a, err
}
func (a DomainSaveArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteXDRString(buf, a.To)
}

type DomainRestoreArgs struct{ From string }

func DecodeDomainRestoreArgs(r io.Reader) (DomainRestoreArgs, error) {
	s, err := xdr.DecodeString(r)
	return DomainRestoreArgs{From: s}, err
}
func (a DomainRestoreArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.From) }

type DomainCoreDumpArgs struct {
	Dom   DomainDesc
	To    string
	Flags uint32
}

func DecodeDomainCoreDumpArgs(r io.Reader) (DomainCoreDumpArgs, error) {
	var a DomainCoreDumpArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	if a.To, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint32(r)
	return a, err
}
func (a DomainCoreDumpArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	if err := xdr.WriteXDRString(buf, a.To); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Flags)
}
