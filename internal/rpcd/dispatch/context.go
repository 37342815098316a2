// Package dispatch is the server's RPC dispatch core: header validation,
// auth gating, the procedure table, and the per-connection serve loop that
// ties them to a driver.Facade.
package dispatch

import (
	"github.com/go-virt/virtd/internal/auth/gssapi"
	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/metrics"
	"github.com/go-virt/virtd/internal/rpcd/session"
)

// HandlerContext is threaded through every procedure handler: the facade to
// drive, the session whose auth/conn state the handler may read or mutate,
// and the verifier backing fresh SASL contexts created by AUTH_SASL_INIT.
type HandlerContext struct {
	Facade   driver.Facade
	Session  *session.Session
	Verifier gssapi.Verifier
	Metrics  *metrics.Registry
}

// Conn returns the session's live driver connection, or nil if Open has not
// succeeded yet.
func (hc *HandlerContext) Conn() *driver.Conn {
	return hc.Session.DriverConn()
}
