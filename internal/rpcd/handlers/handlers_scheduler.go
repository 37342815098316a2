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
	dispatch.Register(virt.ProcDomainGetSchedulerType, handleDomainGetSchedulerType)
	dispatch.Register(virt.ProcDomainGetSchedulerParameters, handleDomainGetSchedulerParameters)
	dispatch.Register(virt.ProcDomainSetSchedulerParameters, handleDomainSetSchedulerParameters)
}

func handleDomainGetSchedulerType(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var ret virt.DomainGetSchedulerTypeRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		typ, nparams, err := hc.Facade.DomainGetSchedulerType(dom)
		if err != nil {
			return err
		}
		ret = virt.DomainGetSchedulerTypeRet{Type: typ, Nparams: nparams}
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}

func handleDomainGetSchedulerParameters(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainGetSchedulerParametersArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Nparams > virt.SchedulerParametersMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("nparams %d exceeds maximum %d", args.Nparams, virt.SchedulerParametersMax))
	}
	var ret virt.DomainSchedulerParametersRet
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		params, err := hc.Facade.DomainGetSchedulerParameters(dom, args.Nparams)
		if err != nil {
			return err
		}
		ret.Params = make([]virt.SchedParam, len(params))
		for i, p := range params {
			wv, err := wireSchedParamValue(p.Value)
			if err != nil {
				return err
			}
			ret.Params[i] = virt.SchedParam{Field: p.Field, Value: wv}
		}
		return nil
	})
	if derr != nil {
		return driverFailed()
	}
	return ret, dispatch.OutcomeSuccess
}

func handleDomainSetSchedulerParameters(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeDomainSetSchedulerParametersArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	params := make([]driver.SchedParam, len(args.Params))
	for i, p := range args.Params {
		dv, err := driverSchedParamValue(p.Value)
		if err != nil {
			return decodeFailed(w, reqHeader, err)
		}
		params[i] = driver.SchedParam{Field: p.Field, Value: dv}
	}
	derr := handle.WithDomain(hc.Facade, hc.Conn(), args.Dom, func(dom *driver.Domain) error {
		return hc.Facade.DomainSetSchedulerParameters(dom, params)
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

// wireSchedParamValue and driverSchedParamValue translate between the
// driver's SchedParamKind (an int enum private to the driver package) and
// the wire's SchedParamKind (the uint32 XDR discriminant). The two enums
// share ordinal values by construction; only the Go type differs.
func wireSchedParamValue(v driver.SchedParamValue) (virt.SchedParamValue, error) {
	kind := virt.SchedParamKind(v.Kind)
	if kind > virt.SchedParamBoolean {
		return virt.SchedParamValue{}, fmt.Errorf("scheduler parameter: unknown kind %d", v.Kind)
	}
	return virt.SchedParamValue{Kind: kind, I: v.I, UI: v.UI, LL: v.LL, ULL: v.ULL, D: v.D, B: v.B}, nil
}

func driverSchedParamValue(v virt.SchedParamValue) (driver.SchedParamValue, error) {
	kind := driver.SchedParamKind(v.Kind)
	if kind < driver.SchedParamInt || kind > driver.SchedParamBoolean {
		return driver.SchedParamValue{}, fmt.Errorf("scheduler parameter: unknown kind %d", v.Kind)
	}
	return driver.SchedParamValue{Kind: kind, I: v.I, UI: v.UI, LL: v.LL, ULL: v.ULL, D: v.D, B: v.B}, nil
}
