package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"

	"github.com/go-virt/virtd/internal/auth/gssapi"
	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/logger"
	"github.com/go-virt/virtd/internal/metrics"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/session"
	"github.com/go-virt/virtd/internal/rpcd/wireerr"
)

// Server owns the dependencies every accepted connection's dispatch loop
// needs: the driver facade it drives, the SASL verifier fresh auth contexts
// are built from, and the two accept-time flags a real listener would
// derive from its bind configuration.
type Server struct {
	Facade       driver.Facade
	Verifier     gssapi.Verifier
	ReadOnly     bool
	AuthRequired bool

	// Metrics is optional; a nil Registry makes every observation a no-op.
	Metrics *metrics.Registry
}

// Serve runs one connection's request loop until the connection closes, a
// frame fails to read, or ctx is canceled. Unlike the teacher's NFS
// connection loop, requests are processed strictly one at a time: no
// semaphore, no per-request goroutine. A client's replies come back in the
// exact order its requests were sent, which is the protocol's one ordering
// guarantee.
func (srv *Server) Serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sess := session.New(conn, srv.ReadOnly, srv.AuthRequired)
	ctx = logger.WithContext(ctx, logger.NewLogContext(sess.RemoteAddr()))
	logger.InfoCtx(ctx, "connection accepted", logger.ClientHost(sess.RemoteAddr()))
	srv.Metrics.SessionOpened()
	defer srv.Metrics.SessionClosed()
	defer logger.InfoCtx(ctx, "connection closed", logger.ClientHost(sess.RemoteAddr()))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := virt.ReadFrame(conn)
		if err != nil {
			if err != io.EOF {
				logger.WarnCtx(ctx, "frame read failed", logger.Err(err))
			}
			return
		}

		if !srv.dispatchFrame(ctx, sess, frame) {
			return
		}
	}
}

// dispatchFrame decodes and handles one request. It reports whether the
// connection should keep reading; a false return means the connection is
// unrecoverable and Serve must close it.
func (srv *Server) dispatchFrame(ctx context.Context, sess *session.Session, frame []byte) (keepGoing bool) {
	keepGoing = true
	r := bytes.NewReader(frame)

	reqHeader, err := virt.DecodeHeader(r)
	if err != nil {
		logger.WarnCtx(ctx, "header decode failed", logger.Err(err))
		_ = wireerr.SendDefaultError(sess.Conn, wireerr.Internal(err))
		return false
	}

	// A panic anywhere below (a handler's driver call, a malformed decode
	// that slipped past argument validation) is converted into an
	// internal-error reply here rather than tearing down the session; the
	// client that triggered it sees one failed call, not a dropped
	// connection.
	defer func() {
		if p := recover(); p != nil {
			logger.ErrorCtx(ctx, "handler panic",
				logger.Procedure(virt.ProcedureName(reqHeader.Proc)),
				logger.Err(fmt.Errorf("%v", p)))
			_ = wireerr.SendError(sess.Conn, reqHeader, wireerr.Internal(fmt.Errorf("panic: %v", p)))
		}
	}()

	if err := ValidateHeader(reqHeader); err != nil {
		logger.WarnCtx(ctx, "header validation failed", logger.Err(err))
		return wireerr.SendError(sess.Conn, reqHeader, wireerr.Generic(virt.ErrCodeRPC, err.Error())) == nil
	}

	if sess.Auth().NeedsAuth() && !virt.IsAuthProcedure(reqHeader.Proc) {
		logger.WarnCtx(ctx, "procedure rejected before authentication",
			logger.Procedure(virt.ProcedureName(reqHeader.Proc)))
		return wireerr.SendError(sess.Conn, reqHeader, wireerr.AuthFailed("authentication required")) == nil
	}

	name, handler, ok := Lookup(reqHeader.Proc)
	if !ok {
		logger.WarnCtx(ctx, "unknown procedure", logger.Count(reqHeader.Proc))
		return wireerr.SendError(sess.Conn, reqHeader,
			wireerr.Generic(virt.ErrCodeRPC, fmt.Sprintf("unknown procedure %d", reqHeader.Proc))) == nil
	}

	logger.DebugCtx(ctx, "dispatching procedure", logger.Procedure(name))

	hc := &HandlerContext{Facade: srv.Facade, Session: sess, Verifier: srv.Verifier, Metrics: srv.Metrics}
	ret, outcome := handler(hc, reqHeader, r, sess.Conn)

	switch outcome {
	case OutcomeSuccess:
		srv.Metrics.ObserveRequest(name, "success")
		if ret == nil {
			ret = virt.Void{}
		}
		if err := wireerr.SendReply(sess.Conn, reqHeader, ret); err != nil {
			logger.ErrorCtx(ctx, "reply encode failed", logger.Err(err))
			return false
		}

	case OutcomeDriverError:
		srv.Metrics.ObserveRequest(name, "driver_error")
		srv.Metrics.ObserveRequestError(name, "driver")
		derr := hc.Facade.LastError(hc.Conn())
		var rec *virt.ErrorRecord
		if derr != nil {
			rec = wireerr.FromDriverError(derr)
		} else {
			// The two-source policy: a handler reported failure but the
			// driver's last-error slot is empty, so there is nothing to
			// project. The client still gets a parseable error reply.
			rec = wireerr.Generic(virt.ErrCodeRPC,
				"library function returned error but did not set virterror")
		}
		if err := wireerr.SendError(sess.Conn, reqHeader, rec); err != nil {
			logger.ErrorCtx(ctx, "error reply encode failed", logger.Err(err))
			return false
		}

	case OutcomeDispatchError:
		srv.Metrics.ObserveRequest(name, "dispatch_error")
		srv.Metrics.ObserveRequestError(name, "dispatch")
		// The handler already wrote its own reply (e.g. the auth gate
		// handlers reply directly so they can control the Complete/Abort
		// transition precisely). Nothing further to send.

	default:
		srv.Metrics.ObserveRequest(name, "dispatch_error")
		srv.Metrics.ObserveRequestError(name, "dispatch")
		err := fmt.Errorf("handler returned unknown outcome %d", outcome)
		logger.ErrorCtx(ctx, "handler outcome invalid", logger.Procedure(name), logger.Err(err))
		if err := wireerr.SendError(sess.Conn, reqHeader, wireerr.Internal(err)); err != nil {
			return false
		}
	}

	return true
}
