// Package handlers binds every procedure number to its handler function,
// registered against internal/rpcd/dispatch's table from each file's
// init(). Decoding, driver calls, and handle lifecycle all live here; the
// dispatch package only knows how to route and reply.
package handlers

import (
	"io"

	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/wireerr"
)

// decodeFailed writes a dispatch-level error reply for a malformed request
// body and reports OutcomeDispatchError, so the dispatcher does not try to
// synthesize a second reply from an empty driver last-error slot.
func decodeFailed(w io.Writer, reqHeader virt.Header, err error) (dispatch.Encodable, dispatch.Outcome) {
	_ = wireerr.SendError(w, reqHeader, wireerr.Generic(virt.ErrCodeRPC, err.Error()))
	return nil, dispatch.OutcomeDispatchError
}

// authFailed writes a dispatch-level auth-failure reply, used by the
// AUTH_SASL_* handlers whose preconditions live in the auth gate itself
// rather than the driver.
func authFailed(w io.Writer, reqHeader virt.Header, message string) (dispatch.Encodable, dispatch.Outcome) {
	_ = wireerr.SendError(w, reqHeader, wireerr.AuthFailed(message))
	return nil, dispatch.OutcomeDispatchError
}

// driverFailed reports a driver-level failure; the dispatcher queries the
// facade's last-error slot and synthesizes the reply from it.
func driverFailed() (dispatch.Encodable, dispatch.Outcome) {
	return nil, dispatch.OutcomeDriverError
}

// connectionRequired is the CHECK_CONN prologue: it rejects a request
// arriving on a session that never completed Open, rather than letting it
// reach a Conn-ignorant driver method. It is run by the connection-query
// handlers (SupportsFeature, GetType, GetVersion, GetHostname, GetMaxVcpus,
// NodeGetInfo, GetCapabilities). Close and the domain, network, scheduler
// and migration handlers do not run it; they pass the session's connection,
// nil before Open, straight to the facade.
func connectionRequired(w io.Writer, reqHeader virt.Header) (dispatch.Encodable, dispatch.Outcome) {
	_ = wireerr.SendError(w, reqHeader, wireerr.Generic(virt.ErrCodeRPC, "connection not open"))
	return nil, dispatch.OutcomeDispatchError
}

// connectionAlreadyOpen rejects a second Open on a session that already
// holds a live driver connection, before the facade is touched.
func connectionAlreadyOpen(w io.Writer, reqHeader virt.Header) (dispatch.Encodable, dispatch.Outcome) {
	_ = wireerr.SendError(w, reqHeader, wireerr.Generic(virt.ErrCodeRPC, "connection already open"))
	return nil, dispatch.OutcomeDispatchError
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
