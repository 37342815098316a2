package handlers

import (
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
)

func init() {
	dispatch.Register(virt.ProcOpen, handleOpen)
	dispatch.Register(virt.ProcClose, handleClose)
	dispatch.Register(virt.ProcSupportsFeature, handleSupportsFeature)
	dispatch.Register(virt.ProcGetType, handleGetType)
	dispatch.Register(virt.ProcGetVersion, handleGetVersion)
	dispatch.Register(virt.ProcGetHostname, handleGetHostname)
	dispatch.Register(virt.ProcGetMaxVcpus, handleGetMaxVcpus)
	dispatch.Register(virt.ProcNodeGetInfo, handleNodeGetInfo)
	dispatch.Register(virt.ProcGetCapabilities, handleGetCapabilities)
}

// handleOpen establishes the session's driver connection. The listening
// socket's read-only bit is OR-ed into the client's requested flags
// regardless of what the client asked for, so a read-only bind can never be
// escalated by a client-supplied flag.
func handleOpen(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if hc.Session.IsOpen() {
		return connectionAlreadyOpen(w, reqHeader)
	}

	args, err := virt.DecodeOpenArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}

	name := ""
	if args.HasName {
		name = *args.Name
	}
	flags := driver.OpenFlags(args.Flags)
	if hc.Session.ReadOnly {
		flags |= driver.OpenFlagReadOnly
	}

	conn, err := hc.Facade.Open(name, flags)
	if err != nil {
		return driverFailed()
	}
	hc.Session.SetDriverConn(conn)
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleClose(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	conn := hc.Conn()
	hc.Session.SetDriverConn(nil)
	if conn == nil {
		return virt.Void{}, dispatch.OutcomeSuccess
	}
	if err := hc.Facade.Close(conn); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleSupportsFeature(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}

	args, err := virt.DecodeSupportsFeatureArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	// The stub driver models no optional wire features beyond the
	// baseline procedure set, so every feature queried reports false
	// rather than guessing at a real driver's capability bits.
	_ = args
	return virt.SupportsFeatureRet{Supported: 0}, dispatch.OutcomeSuccess
}

func handleGetType(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}
	typ, err := hc.Facade.GetType(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.GetTypeRet{Type: typ}, dispatch.OutcomeSuccess
}

func handleGetVersion(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}
	v, err := hc.Facade.GetVersion(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.GetVersionRet{HVVer: v}, dispatch.OutcomeSuccess
}

func handleGetHostname(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}
	h, err := hc.Facade.GetHostname(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.GetHostnameRet{Hostname: h}, dispatch.OutcomeSuccess
}

func handleGetMaxVcpus(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}

	args, err := virt.DecodeGetMaxVcpusArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	max, err := hc.Facade.GetMaxVcpus(hc.Conn(), args.Type)
	if err != nil {
		return driverFailed()
	}
	return virt.GetMaxVcpusRet{MaxVcpus: max}, dispatch.OutcomeSuccess
}

func handleNodeGetInfo(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}
	info, err := hc.Facade.NodeGetInfo(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.NodeGetInfoRet{
		Model:   info.Model,
		Memory:  info.Memory,
		Cpus:    info.Cpus,
		MHz:     info.MHz,
		Nodes:   info.Nodes,
		Sockets: info.Sockets,
		Cores:   info.Cores,
		Threads: info.Threads,
	}, dispatch.OutcomeSuccess
}

func handleGetCapabilities(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if !hc.Session.IsOpen() {
		return connectionRequired(w, reqHeader)
	}
	caps, err := hc.Facade.GetCapabilities(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.GetCapabilitiesRet{Capabilities: caps}, dispatch.OutcomeSuccess
}
