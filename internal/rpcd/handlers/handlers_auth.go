package handlers

import (
	"io"
	"strings"

	"github.com/go-virt/virtd/internal/auth/gssapi"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/session"
)

func init() {
	dispatch.Register(virt.ProcAuthList, handleAuthList)
	dispatch.Register(virt.ProcAuthSaslInit, handleAuthSaslInit)
	dispatch.Register(virt.ProcAuthSaslStart, handleAuthSaslStart)
	dispatch.Register(virt.ProcAuthSaslStep, handleAuthSaslStep)
}

// handleAuthList reports the session's single required auth type, mirroring
// the real protocol's array-shaped reply even though exactly one type is
// ever required at a time.
func handleAuthList(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	return virt.AuthListRet{Types: []uint32{uint32(hc.Session.Auth().Current())}}, dispatch.OutcomeSuccess
}

// handleAuthSaslInit starts a fresh SASL negotiation. It fails if the
// session doesn't require SASL, or a negotiation is already underway; both
// are client protocol violations, not driver failures.
func handleAuthSaslInit(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	if hc.Session.Auth().Current() != session.AuthSASL {
		return authFailed(w, reqHeader, "sasl authentication not required")
	}

	ctx := gssapi.NewContext(hc.Verifier)
	if !hc.Session.Auth().BeginNegotiation(ctx) {
		return authFailed(w, reqHeader, "sasl negotiation already in progress")
	}

	return virt.AuthSaslInitRet{Mechlist: strings.Join(ctx.Mechanisms(), ",")}, dispatch.OutcomeSuccess
}

func handleAuthSaslStart(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeAuthSaslStartArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}

	mech := hc.Session.Auth().Context()
	if mech == nil {
		return authFailed(w, reqHeader, "no sasl negotiation in progress")
	}

	out, outPresent, complete, err := mech.Start(args.Mechanism, args.Data, args.HasData)
	if err != nil {
		hc.Session.Auth().Abort()
		hc.Metrics.ObserveAuthFailure()
		return authFailed(w, reqHeader, err.Error())
	}
	if len(out) > virt.AuthSaslDataMax {
		hc.Session.Auth().Abort()
		hc.Metrics.ObserveAuthFailure()
		return authFailed(w, reqHeader, "sasl reply data too long")
	}
	if complete {
		hc.Session.Auth().Complete()
	}

	return virt.AuthSaslResultRet{Data: out, HasData: outPresent, Complete: boolToInt32(complete)}, dispatch.OutcomeSuccess
}

func handleAuthSaslStep(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeAuthSaslStepArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}

	mech := hc.Session.Auth().Context()
	if mech == nil {
		return authFailed(w, reqHeader, "no sasl negotiation in progress")
	}

	out, outPresent, complete, err := mech.Step(args.Data, args.HasData)
	if err != nil {
		hc.Session.Auth().Abort()
		hc.Metrics.ObserveAuthFailure()
		return authFailed(w, reqHeader, err.Error())
	}
	if len(out) > virt.AuthSaslDataMax {
		hc.Session.Auth().Abort()
		hc.Metrics.ObserveAuthFailure()
		return authFailed(w, reqHeader, "sasl reply data too long")
	}
	if complete {
		hc.Session.Auth().Complete()
	}

	return virt.AuthSaslResultRet{Data: out, HasData: outPresent, Complete: boolToInt32(complete)}, dispatch.OutcomeSuccess
}
