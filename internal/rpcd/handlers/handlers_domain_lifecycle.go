package handlers

import (
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
)

func init() {
	dispatch.Register(virt.ProcDomainCreateLinux, handleDomainCreateLinux)
	dispatch.Register(virt.ProcDomainDefineXML, handleDomainDefineXML)
	dispatch.Register(virt.ProcDomainUndefine, handleDomainUndefine)
	dispatch.Register(virt.ProcDomainCreate, handleDomainCreate)
	dispatch.Register(virt.ProcDomainDestroy, handleDomainDestroy)
	dispatch.Register(virt.ProcDomainShutdown, handleDomainShutdown)
	dispatch.Register(virt.ProcDomainReboot, handleDomainReboot)
	dispatch.Register(virt.ProcDomainSuspend, handleDomainSuspend)
	dispatch.Register(virt.ProcDomainResume, handleDomainResume)
	dispatch.Register(virt.ProcDomainSave, handleDomainSave)
	dispatch.Register(virt.ProcDomainRestore, handleDomainRestore)
	dispatch.Register(virt.ProcDomainCoreDump, handleDomainCoreDump)
}

func handleDomainCreateLinux(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainCreateLinuxArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainCreateLinux(hc.Conn(), args.XMLDesc, args.Flags)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}

func handleDomainDefineXML(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainDefineXMLArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainDefineXML(hc.Conn(), args.XML)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}

func handleDomainUndefine(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainUndefine(dom)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainCreate(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainCreate(dom)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainDestroy(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		// DomainDestroy consumes the handle's reference itself; WithDomain
		// must not release it again.
		return handle.Suppressed(hc.Facade.DomainDestroy(dom))
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainShutdown(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainShutdown(dom)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainReboot(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainRebootArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainReboot(dom, args.Flags)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainSuspend(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSuspend(dom)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainResume(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainResume(dom)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainSave(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSaveArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSave(dom, args.To)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainRestore(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainRestoreArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := hc.Facade.DomainRestore(hc.Conn(), args.From); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleDomainCoreDump(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainCoreDumpArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainCoreDump(dom, args.To, args.Flags)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}
