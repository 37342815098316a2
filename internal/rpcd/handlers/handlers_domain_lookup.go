package handlers

import (
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
)

func init() {
	dispatch.Register(virt.ProcDomainLookupByID, handleDomainLookupByID)
	dispatch.Register(virt.ProcDomainLookupByName, handleDomainLookupByName)
	dispatch.Register(virt.ProcDomainLookupByUUID, handleDomainLookupByUUID)
	dispatch.Register(virt.ProcNumOfDomains, handleNumOfDomains)
	dispatch.Register(virt.ProcListDomains, handleListDomains)
	dispatch.Register(virt.ProcNumOfDefinedDomains, handleNumOfDefinedDomains)
	dispatch.Register(virt.ProcListDefinedDomains, handleListDefinedDomains)
}

func handleDomainLookupByID(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainLookupByIDArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainLookupByID(hc.Conn(), args.ID)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}

func handleDomainLookupByName(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainLookupByNameArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainLookupByName(hc.Conn(), args.Name)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}

func handleDomainLookupByUUID(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainLookupByUUIDArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainLookupByUUID(hc.Conn(), args.UUID)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}

func handleNumOfDomains(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	n, err := hc.Facade.NumOfDomains(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.NumOfDomainsRet{Num: n}, dispatch.OutcomeSuccess
}

func handleListDomains(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeListDomainsArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Maxids > virt.DomainIDListMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxids %d exceeds maximum %d", args.Maxids, virt.DomainIDListMax))
	}
	ids, err := hc.Facade.ListDomains(hc.Conn(), int(args.Maxids))
	if err != nil {
		return driverFailed()
	}
	return virt.ListDomainsRet{IDs: ids}, dispatch.OutcomeSuccess
}

func handleNumOfDefinedDomains(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	n, err := hc.Facade.NumOfDefinedDomains(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.NumOfDefinedDomainsRet{Num: n}, dispatch.OutcomeSuccess
}

func handleListDefinedDomains(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeListDefinedDomainsArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Maxnames > virt.DomainNameListMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxnames %d exceeds maximum %d", args.Maxnames, virt.DomainNameListMax))
	}
	names, err := hc.Facade.ListDefinedDomains(hc.Conn(), int(args.Maxnames))
	if err != nil {
		return driverFailed()
	}
	return virt.ListDefinedDomainsRet{Names: names}, dispatch.OutcomeSuccess
}
