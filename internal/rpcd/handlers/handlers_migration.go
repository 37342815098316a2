package handlers

import (
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
)

func init() {
	dispatch.Register(virt.ProcDomainMigratePrepare, handleDomainMigratePrepare)
	dispatch.Register(virt.ProcDomainMigratePerform, handleDomainMigratePerform)
	dispatch.Register(virt.ProcDomainMigrateFinish, handleDomainMigrateFinish)
}

// handleDomainMigratePrepare runs on the destination host. The driver facade
// only models the cookie and URI exchange; flags, dname and resource are
// decoded for wire fidelity but have no stub-driver counterpart to act on.
// uriOut is only populated when the caller didn't supply uriIn, matching how
// a real migration lets the destination pick a connect-back URI when the
// source didn't ask for a specific one.
func handleDomainMigratePrepare(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainMigratePrepareArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}

	uriIn := ""
	if args.URIIn != nil {
		uriIn = *args.URIIn
	}

	cookieOut, uriOut, err := hc.Facade.DomainMigratePrepare(hc.Conn(), nil, uriIn)
	if err != nil {
		return driverFailed()
	}

	ret := virt.DomainMigratePrepareRet{Cookie: cookieOut}
	if args.URIIn == nil {
		ret.URIOut = &uriOut
	}
	return ret, dispatch.OutcomeSuccess
}

// handleDomainMigratePerform runs on the source host, consuming the cookie
// produced by MigratePrepare.
func handleDomainMigratePerform(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainMigratePerformArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainMigratePerform(dom, args.Cookie, args.URI)
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

// handleDomainMigrateFinish runs on the destination host to complete the
// migration and return the new domain's handle.
func handleDomainMigrateFinish(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainMigrateFinishArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	dom, err := hc.Facade.DomainMigrateFinish(hc.Conn(), args.Dname, args.Cookie, args.URI)
	if err != nil {
		return driverFailed()
	}
	return virt.DomainRet{Dom: handle.MakeNonnullDomain(hc.Facade, dom)}, dispatch.OutcomeSuccess
}
