package handlers

import (
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
)

func init() {
	dispatch.Register(virt.ProcDomainGetInfo, handleDomainGetInfo)
	dispatch.Register(virt.ProcDomainGetMaxMemory, handleDomainGetMaxMemory)
	dispatch.Register(virt.ProcDomainGetOsType, handleDomainGetOsType)
	dispatch.Register(virt.ProcDomainGetAutostart, handleDomainGetAutostart)
	dispatch.Register(virt.ProcDomainSetAutostart, handleDomainSetAutostart)
	dispatch.Register(virt.ProcDomainSetMaxMemory, handleDomainSetMaxMemory)
	dispatch.Register(virt.ProcDomainSetMemory, handleDomainSetMemory)
	dispatch.Register(virt.ProcDomainSetVcpus, handleDomainSetVcpus)
	dispatch.Register(virt.ProcDomainPinVcpu, handleDomainPinVcpu)
	dispatch.Register(virt.ProcDomainGetVcpus, handleDomainGetVcpus)
	dispatch.Register(virt.ProcDomainDumpXML, handleDomainDumpXML)
	dispatch.Register(virt.ProcDomainAttachDevice, handleDomainAttachDevice)
	dispatch.Register(virt.ProcDomainDetachDevice, handleDomainDetachDevice)
	dispatch.Register(virt.ProcDomainBlockStats, handleDomainBlockStats)
	dispatch.Register(virt.ProcDomainInterfaceStats, handleDomainInterfaceStats)
}

func handleDomainGetInfo(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var ret virt.DomainGetInfoRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		info, err := hc.Facade.DomainGetInfo(dom)
		if err != nil {
			return err
		}
		ret = virt.DomainGetInfoRet{
			State:     int32(info.State),
			MaxMem:    info.MaxMemKB,
			Memory:    info.MemoryKB,
			NrVirtCPU: info.NrVirtCPU,
			CPUTime:   info.CPUTimeNs,
		}
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}

func handleDomainGetMaxMemory(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var value uint64
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		v, err := hc.Facade.DomainGetMaxMemory(dom)
		value = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.Uint64Ret{Value: value}, dispatch.OutcomeSuccess
}

func handleDomainGetOsType(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var value string
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		v, err := hc.Facade.DomainGetOSType(dom)
		value = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.StringRet{Value: value}, dispatch.OutcomeSuccess
}

func handleDomainGetAutostart(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var value bool
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		v, err := hc.Facade.DomainGetAutostart(dom)
		value = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.Int32Ret{Value: boolToInt32(value)}, dispatch.OutcomeSuccess
}

func handleDomainSetAutostart(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSetAutostartArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSetAutostart(dom, args.Autostart != 0)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainSetMaxMemory(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSetMemoryArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSetMaxMemory(dom, args.Memory)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainSetMemory(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSetMemoryArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSetMemory(dom, args.Memory)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainSetVcpus(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSetVcpusArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSetVcpus(dom, args.Nvcpus)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainPinVcpu(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainPinVcpuArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainPinVcpu(dom, args.Vcpu, args.CPUMap)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainGetVcpus(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainGetVcpusArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Maxinfo > virt.VcpuInfoMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxinfo %d exceeds maximum %d", args.Maxinfo, virt.VcpuInfoMax))
	}
	if int64(args.Maxinfo)*int64(args.Maplen) > virt.CPUMapsMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxinfo * maplen exceeds maximum %d", virt.CPUMapsMax))
	}
	var ret virt.DomainGetVcpusRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		infos, maps, err := hc.Facade.DomainGetVcpus(dom, int(args.Maxinfo), int(args.Maplen))
		if err != nil {
			return err
		}
		ret.Info = make([]virt.VcpuInfo, len(infos))
		for i, v := range infos {
			ret.Info[i] = virt.VcpuInfo{Number: v.Number, State: v.State, CPUTime: v.CPUTime, CPU: v.CPU}
		}
		ret.CPUMaps = packCPUMaps(maps, int(args.Maplen))
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}

// packCPUMaps concatenates the driver's per-vcpu bitmaps into the single
// packed byte string the wire expects, truncating or zero-padding each
// entry to maplen bytes.
func packCPUMaps(maps [][]byte, maplen int) []byte {
	if maplen <= 0 {
		return nil
	}
	out := make([]byte, len(maps)*maplen)
	for i, m := range maps {
		n := len(m)
		if n > maplen {
			n = maplen
		}
		copy(out[i*maplen:i*maplen+n], m[:n])
	}
	return out
}

func handleDomainDumpXML(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainDumpXMLArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var xml string
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		v, err := hc.Facade.DomainDumpXML(dom, args.Flags)
		xml = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.StringRet{Value: xml}, dispatch.OutcomeSuccess
}

func handleDomainAttachDevice(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainDeviceArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainAttachDevice(dom, args.XML)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainDetachDevice(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainDeviceArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainDetachDevice(dom, args.XML)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

// handleDomainBlockStats and handleDomainInterfaceStats route through
// handle.WithDomain like every other lookup, the fix for the handle leak on
// their error path: the original dispatcher only released the handle after
// a successful stats call.
func handleDomainBlockStats(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainStatsPathArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var ret virt.DomainBlockStatsRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		stats, err := hc.Facade.DomainBlockStats(dom, args.Path)
		if err != nil {
			return err
		}
		ret = virt.DomainBlockStatsRet{RdReq: stats.RdReq, RdBytes: stats.RdBytes, WrReq: stats.WrReq, WrBytes: stats.WrBytes, Errs: stats.Errs}
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}

func handleDomainInterfaceStats(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainStatsPathArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var ret virt.DomainInterfaceStatsRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		stats, err := hc.Facade.DomainInterfaceStats(dom, args.Path)
		if err != nil {
			return err
		}
		ret = virt.DomainInterfaceStatsRet{
			RxBytes: stats.RxBytes, RxPackets: stats.RxPackets, RxErrs: stats.RxErrs, RxDrop: stats.RxDrop,
			TxBytes: stats.TxBytes, TxPackets: stats.TxPackets, TxErrs: stats.TxErrs, TxDrop: stats.TxDrop,
		}
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}
