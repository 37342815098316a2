package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

type DomainGetInfoRet struct {
	State     int32
	MaxMem    uint64
	Memory    uint64
	NrVirtCPU uint32
	CPUTime   uint64
}

func DecodeDomainGetInfoRet(r io.Reader) (DomainGetInfoRet, error) {
	var ret DomainGetInfoRet
	var err error
	if ret.State, err = xdr.DecodeInt32(r); err != nil {
		return ret, err
	}
	if ret.MaxMem, err = xdr.DecodeUint64(r); err != nil {
		return ret, err
	}
	if ret.Memory, err = xdr.DecodeUint64(r); err != nil {
		return ret, err
	}
	if ret.NrVirtCPU, err = xdr.DecodeUint32(r); err != nil {
		return ret, err
	}
	ret.CPUTime, err = xdr.DecodeUint64(r)
	return ret, err
}
func (r DomainGetInfoRet) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteInt32(buf, r.State); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, r.MaxMem); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, r.Memory); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, r.NrVirtCPU); err != nil {
		return err
	}
	return xdr.WriteUint64(buf, r.CPUTime)
}

type Uint64Ret struct{ Value uint64 }

func DecodeUint64Ret(r io.Reader) (Uint64Ret, error) {
	v, err := xdr.DecodeUint64(r)
	return Uint64Ret{Value: v}, err
}
func (r Uint64Ret) Encode(buf *bytes.Buffer) error { return xdr.WriteUint64(buf, r.Value) }

type StringRet struct{ Value string }

func DecodeStringRet(r io.Reader) (StringRet, error) {
	s, err := xdr.DecodeString(r)
	return StringRet{Value: s}, err
}
func (r StringRet) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, r.Value) }

type Int32Ret struct{ Value int32 }

func DecodeInt32Ret(r io.Reader) (Int32Ret, error) {
	v, err := xdr.DecodeInt32(r)
	return Int32Ret{Value: v}, err
}
func (r Int32Ret) Encode(buf *bytes.Buffer) error { return xdr.WriteInt32(buf, r.Value) }

type DomainSetAutostartArgs struct {
	Dom       DomainDesc
	Autostart int32
}

func DecodeDomainSetAutostartArgs(r io.Reader) (DomainSetAutostartArgs, error) {
	var a DomainSetAutostartArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Autostart, err = xdr.DecodeInt32(r)
	return a, err
}
func (a DomainSetAutostartArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, a.Autostart)
}

type DomainSetMemoryArgs struct {
	Dom    DomainDesc
	Memory uint64
}

func DecodeDomainSetMemoryArgs(r io.Reader) (DomainSetMemoryArgs, error) {
	var a DomainSetMemoryArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Memory, err = xdr.DecodeUint64(r)
	return a, err
}
func (a DomainSetMemoryArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteUint64(buf, a.Memory)
}

type DomainSetVcpusArgs struct {
	Dom    DomainDesc
	Nvcpus uint32
}

func DecodeDomainSetVcpusArgs(r io.Reader) (DomainSetVcpusArgs, error) {
	var a DomainSetVcpusArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Nvcpus, err = xdr.DecodeUint32(r)
	return a, err
}
func (a DomainSetVcpusArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Nvcpus)
}

type DomainPinVcpuArgs struct {
	Dom    DomainDesc
	Vcpu   uint32
	CPUMap []byte
}

func DecodeDomainPinVcpuArgs(r io.Reader) (DomainPinVcpuArgs, error) {
	var a DomainPinVcpuArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	if a.Vcpu, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	cpumap, err := xdr.DecodeOpaque(r)
	if err != nil {
		return a, err
	}
	if err := xdr.CheckArrayCap(uint32(len(cpumap)), CPUMapMax); err != nil {
		return a, err
	}
	a.CPUMap = cpumap
	return a, nil
}
func (a DomainPinVcpuArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Vcpu); err != nil {
		return err
	}
	return xdr.WriteXDROpaque(buf, a.CPUMap)
}

type DomainGetVcpusArgs struct {
	Dom     DomainDesc
	Maxinfo int32
	Maplen  int32
}

func DecodeDomainGetVcpusArgs(r io.Reader) (DomainGetVcpusArgs, error) {
	var a DomainGetVcpusArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	if a.Maxinfo, err = xdr.DecodeInt32(r); err != nil {
		return a, err
	}
	a.Maplen, err = xdr.DecodeInt32(r)
	return a, err
}
func (a DomainGetVcpusArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, a.Maxinfo); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, a.Maplen)
}

// VcpuInfo mirrors driver.VcpuInfo on the wire.
type VcpuInfo struct {
	Number  uint32
	State   int32
	CPUTime uint64
	CPU     int32
}

func decodeVcpuInfo(r io.Reader) (VcpuInfo, error) {
	var v VcpuInfo
	var err error
	if v.Number, err = xdr.DecodeUint32(r); err != nil {
		return v, err
	}
	if v.State, err = xdr.DecodeInt32(r); err != nil {
		return v, err
	}
	if v.CPUTime, err = xdr.DecodeUint64(r); err != nil {
		return v, err
	}
	v.CPU, err = xdr.DecodeInt32(r)
	return v, err
}
func (v VcpuInfo) encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, v.Number); err != nil {
		return err
	}
	if err := xdr.WriteInt32(buf, v.State); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, v.CPUTime); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, v.CPU)
}

type DomainGetVcpusRet struct {
	Info    []VcpuInfo
	CPUMaps []byte
}

func DecodeDomainGetVcpusRet(r io.Reader) (DomainGetVcpusRet, error) {
	var ret DomainGetVcpusRet
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return ret, err
	}
	if err := xdr.CheckArrayCap(count, VcpuInfoMax); err != nil {
		return ret, err
	}
	ret.Info = make([]VcpuInfo, count)
	for i := range ret.Info {
		if ret.Info[i], err = decodeVcpuInfo(r); err != nil {
			return ret, err
		}
	}
	maps, err := xdr.DecodeOpaque(r)
	if err != nil {
		return ret, err
	}
	if err := xdr.CheckArrayCap(uint32(len(maps)), CPUMapsMax); err != nil {
		return ret, err
	}
	ret.CPUMaps = maps
	return ret, nil
}
func (ret DomainGetVcpusRet) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, uint32(len(ret.Info))); err != nil {
		return err
	}
	for _, v := range ret.Info {
		if err := v.encode(buf); err != nil {
			return err
		}
	}
	return xdr.WriteXDROpaque(buf, ret.CPUMaps)
}

type DomainDumpXMLArgs struct {
	Dom   DomainDesc
	Flags uint32
}

func DecodeDomainDumpXMLArgs(r io.Reader) (DomainDumpXMLArgs, error) {
	var a DomainDumpXMLArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint32(r)
	return a, err
}
func (a DomainDumpXMLArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, a.Flags)
}

type DomainDeviceArgs struct {
	Dom DomainDesc
	XML string
}

func DecodeDomainDeviceArgs(r io.Reader) (DomainDeviceArgs, error) {
	var a DomainDeviceArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.XML, err = xdr.DecodeString(r)
	return a, err
}
func (a DomainDeviceArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteXDRString(buf, a.XML)
}

type DomainStatsPathArgs struct {
	Dom  DomainDesc
	Path string
}

func DecodeDomainStatsPathArgs(r io.Reader) (DomainStatsPathArgs, error) {
	var a DomainStatsPathArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Path, err = xdr.DecodeString(r)
	return a, err
}
func (a DomainStatsPathArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteXDRString(buf, a.Path)
}

type DomainBlockStatsRet struct {
	RdReq, RdBytes, WrReq, WrBytes, Errs int64
}

func DecodeDomainBlockStatsRet(r io.Reader) (DomainBlockStatsRet, error) {
	var ret DomainBlockStatsRet
	var err error
	if ret.RdReq, err = xdr.DecodeInt64(r); err != nil {
		return ret, err
	}
	if ret.RdBytes, err = xdr.DecodeInt64(r); err != nil {
		return ret, err
	}
	if ret.WrReq, err = xdr.DecodeInt64(r); err != nil {
		return ret, err
	}
	if ret.WrBytes, err = xdr.DecodeInt64(r); err != nil {
		return ret, err
	}
	ret.Errs, err = xdr.DecodeInt64(r)
	return ret, err
}
func (ret DomainBlockStatsRet) Encode(buf *bytes.Buffer) error {
	for _, v := range []int64{ret.RdReq, ret.RdBytes, ret.WrReq, ret.WrBytes, ret.Errs} {
		if err := xdr.WriteInt64(buf, v); err != nil {
			return err
		}
	}
	return nil
}

type DomainInterfaceStatsRet struct {
	RxBytes, RxPackets, RxErrs, RxDrop int64
	TxBytes, TxPackets, TxErrs, TxDrop int64
}

func DecodeDomainInterfaceStatsRet(r io.Reader) (DomainInterfaceStatsRet, error) {
	var ret DomainInterfaceStatsRet
	fields := []*int64{&ret.RxBytes, &ret.RxPackets, &ret.RxErrs, &ret.RxDrop, &ret.TxBytes, &ret.TxPackets, &ret.TxErrs, &ret.TxDrop}
	for _, f := range fields {
		v, err := xdr.DecodeInt64(r)
		if err != nil {
			return ret, err
		}
		*f = v
	}
	return ret, nil
}
func (ret DomainInterfaceStatsRet) Encode(buf *bytes.Buffer) error {
	fields := []int64{ret.RxBytes, ret.RxPackets, ret.RxErrs, ret.RxDrop, ret.TxBytes, ret.TxPackets, ret.TxErrs, ret.TxDrop}
	for _, v := range fields {
		if err := xdr.WriteInt64(buf, v); err != nil {
			return err
		}
	}
	return nil
}
