package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// OpenArgs is REMOTE_PROC_OPEN's argument: name is empty for the default
// driver connection URI; flags carries OpenFlagReadOnly/OpenFlagNoAliases.
type OpenArgs struct {
	Name     *string
	HasName  bool
	Flags    uint32
}

func DecodeOpenArgs(r io.Reader) (OpenArgs, error) {
	var a OpenArgs
	present, err := xdr.DecodeOptionalPresence(r)
	if err != nil {
		return a, err
	}
	a.HasName = present
	if present {
		name, err := xdr.DecodeString(r)
		if err != nil {
			return a, err
		}
		a.Name = &name
	}
	if a.Flags, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	return a, nil
}

func (a OpenArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteOptionalPresence(buf, a.HasName); err != nil {
		return err
	}
	if a.HasName {
		if err := xdr.WriteXDRString(buf, *a.Name); err != nil {
			return err
		}
	}
	return xdr.WriteUint32(buf, a.Flags)
}

// SupportsFeatureArgs/Ret.
type SupportsFeatureArgs struct{ Feature int32 }

func DecodeSupportsFeatureArgs(r io.Reader) (SupportsFeatureArgs, error) {
	v, err := xdr.DecodeInt32(r)
	return SupportsFeatureArgs{Feature: v}, err
}
func (a SupportsFeatureArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Feature) }

type SupportsFeatureRet struct{ Supported int32 }

func DecodeSupportsFeatureRet(r io.Reader) (SupportsFeatureRet, error) {
	v, err := xdr.DecodeInt32(r)
	return SupportsFeatureRet{Supported: v}, err
}
func (a SupportsFeatureRet) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.Supported) }

// GetTypeRet.
type GetTypeRet struct{ Type string }

func DecodeGetTypeRet(r io.Reader) (GetTypeRet, error) {
	s, err := xdr.DecodeString(r)
	return GetTypeRet{Type: s}, err
}
func (a GetTypeRet) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.Type) }

// GetVersionRet.
type GetVersionRet struct{ HVVer uint64 }

func DecodeGetVersionRet(r io.Reader) (GetVersionRet, error) {
	v, err := xdr.DecodeUint64(r)
	return GetVersionRet{HVVer: v}, err
}
func (a GetVersionRet) Encode(buf *bytes.Buffer) error { return xdr.WriteUint64(buf, a.HVVer) }

// GetHostnameRet.
type GetHostnameRet struct{ Hostname string }

func DecodeGetHostnameRet(r io.Reader) (GetHostnameRet, error) {
	s, err := xdr.DecodeString(r)
	return GetHostnameRet{Hostname: s}, err
}
func (a GetHostnameRet) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.Hostname) }

// GetMaxVcpusArgs/Ret.
type GetMaxVcpusArgs struct{ Type string }

func DecodeGetMaxVcpusArgs(r io.Reader) (GetMaxVcpusArgs, error) {
	s, err := xdr.DecodeString(r)
	return GetMaxVcpusArgs{Type: s}, err
}
func (a GetMaxVcpusArgs) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, a.Type) }

type GetMaxVcpusRet struct{ MaxVcpus int32 }

func DecodeGetMaxVcpusRet(r io.Reader) (GetMaxVcpusRet, error) {
	v, err := xdr.DecodeInt32(r)
	return GetMaxVcpusRet{MaxVcpus: v}, err
}
func (a GetMaxVcpusRet) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, a.MaxVcpus) }

// NodeGetInfoRet mirrors driver.NodeInfo on the wire.
type NodeGetInfoRet struct {
	Model   string
	Memory  uint64
	Cpus    int32
	MHz     int32
	Nodes   int32
	Sockets int32
	Cores   int32
	Threads int32
}

func DecodeNodeGetInfoRet(r io.Reader) (NodeGetInfoRet, error) {
	var n NodeGetInfoRet
	var err error
	if n.Model, err = xdr.DecodeString(r); err != nil {
		return n, err
	}
	if n.Memory, err = xdr.DecodeUint64(r); err != nil {
		return n, err
	}
	if n.Cpus, err = xdr.DecodeInt32(r); err != nil {
		return n, err
	}
	if n.MHz, err = xdr.DecodeInt32(r); err != nil {
		return n, err
	}
	if n.Nodes, err = xdr.DecodeInt32(r); err != nil {
		return n, err
	}
	if n.Sockets, err = xdr.DecodeInt32(r); err != nil {
		return n, err
	}
	if n.Cores, err = xdr.DecodeInt32(r); err != nil {
		return n, err
	}
	n.Threads, err = xdr.DecodeInt32(r)
	return n, err
}

func (n NodeGetInfoRet) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, n.Model); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, n.Memory); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, n.Cpus); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, n.MHz); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, n.Nodes); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, n.Sockets); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, n.Cores); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, n.Threads)
}

// GetCapabilitiesRet.
type GetCapabilitiesRet struct{ Capabilities string }

func DecodeGetCapabilitiesRet(r io.Reader) (GetCapabilitiesRet, error) {
	s, err := xdr.DecodeString(r)
	return GetCapabilitiesRet{Capabilities: s}, err
}
func (a GetCapabilitiesRet) Encode(buf *bytes.Buffer) error {
	return xdr.WriteXDRString(buf, a.Capabilities)
}
