package dispatch

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/session"
)

// fakeConn is a minimal net.Conn whose Write side is a capturable buffer;
// dispatchFrame is handed its request body directly, so Read is never
// exercised by these tests.
type fakeConn struct {
	bytes.Buffer
}

func (c *fakeConn) Close() error                      { return nil }
func (c *fakeConn) LocalAddr() net.Addr                { return testAddr("local") }
func (c *fakeConn) RemoteAddr() net.Addr               { return testAddr("remote") }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

type testAddr string

func (a testAddr) Network() string { return "test" }
func (a testAddr) String() string  { return string(a) }

const testProc uint32 = 9001

func init() {
	Register(testProc, func(hc *HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (Encodable, Outcome) {
		return virt.AuthListRet{Types: []uint32{uint32(session.AuthNone)}}, OutcomeSuccess
	})
}

func newTestFrame(t *testing.T, proc uint32) []byte {
	t.Helper()
	h := virt.Header{Prog: virt.RemoteProgram, Vers: virt.RemoteProtocolVersion, Proc: proc, Direction: virt.DirectionCall, Status: virt.StatusOK, Serial: 42}
	var buf bytes.Buffer
	if err := h.Encode(&buf); err != nil {
		t.Fatalf("encode header: %v", err)
	}
	return buf.Bytes()
}

func decodeReply(t *testing.T, raw []byte) (virt.Header, []byte) {
	t.Helper()
	r := bytes.NewReader(raw)
	h, err := virt.DecodeHeader(r)
	if err != nil {
		t.Fatalf("decode reply header: %v", err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read reply body: %v", err)
	}
	return h, rest
}

func TestDispatchFrame_SuccessRoundTrips(t *testing.T) {
	conn := &fakeConn{}
	sess := session.New(conn, false, false)
	srv := &Server{Facade: nil}

	keepGoing := srv.dispatchFrame(context.Background(), sess, newTestFrame(t, testProc))
	if !keepGoing {
		t.Fatal("expected dispatchFrame to keep the connection open")
	}

	h, _ := decodeReply(t, conn.Bytes())
	if h.Status != virt.StatusOK {
		t.Fatalf("expected StatusOK, got %s", h.Status)
	}
	if h.Serial != 42 {
		t.Fatalf("expected serial echoed, got %d", h.Serial)
	}
}

func TestDispatchFrame_UnknownProcedure(t *testing.T) {
	conn := &fakeConn{}
	sess := session.New(conn, false, false)
	srv := &Server{}

	keepGoing := srv.dispatchFrame(context.Background(), sess, newTestFrame(t, 99999))
	if !keepGoing {
		t.Fatal("an unknown procedure should not kill the connection")
	}

	h, body := decodeReply(t, conn.Bytes())
	if h.Status != virt.StatusError {
		t.Fatalf("expected StatusError, got %s", h.Status)
	}
	rec, err := virt.DecodeErrorRecord(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode error record: %v", err)
	}
	if rec.Code != virt.ErrCodeRPC {
		t.Fatalf("expected RPC error code, got %d", rec.Code)
	}
}

func TestDispatchFrame_RejectsBeforeAuth(t *testing.T) {
	conn := &fakeConn{}
	sess := session.New(conn, false, true) // auth required
	srv := &Server{}

	keepGoing := srv.dispatchFrame(context.Background(), sess, newTestFrame(t, testProc))
	if !keepGoing {
		t.Fatal("an auth rejection should not kill the connection")
	}

	h, body := decodeReply(t, conn.Bytes())
	if h.Status != virt.StatusError {
		t.Fatalf("expected StatusError, got %s", h.Status)
	}
	rec, err := virt.DecodeErrorRecord(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode error record: %v", err)
	}
	if rec.Code != virt.ErrCodeAuthFailed {
		t.Fatalf("expected auth-failed code, got %d", rec.Code)
	}
}

func TestDispatchFrame_AuthProcedureAdmittedBeforeAuth(t *testing.T) {
	conn := &fakeConn{}
	sess := session.New(conn, false, true)
	srv := &Server{}

	Register(virt.ProcAuthList, func(hc *HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (Encodable, Outcome) {
		return virt.AuthListRet{Types: []uint32{uint32(session.AuthSASL)}}, OutcomeSuccess
	})

	keepGoing := srv.dispatchFrame(context.Background(), sess, newTestFrame(t, virt.ProcAuthList))
	if !keepGoing {
		t.Fatal("AUTH_LIST must be admitted before authentication")
	}
	h, _ := decodeReply(t, conn.Bytes())
	if h.Status != virt.StatusOK {
		t.Fatalf("expected StatusOK, got %s", h.Status)
	}
}

func TestDispatchFrame_DriverErrorUsesLastError(t *testing.T) {
	conn := &fakeConn{}
	sess := session.New(conn, false, false)

	const failProc uint32 = 9002
	Register(failProc, func(hc *HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (Encodable, Outcome) {
		return nil, OutcomeDriverError
	})

	srv := &Server{Facade: &stubLastErrorFacade{err: &driver.Error{Code: driver.ErrCodeNoDomain, Domain: driver.ErrDomainDriver, Level: driver.ErrLevelError, Message: "no domain with matching uuid"}}}
	keepGoing := srv.dispatchFrame(context.Background(), sess, newTestFrame(t, failProc))
	if !keepGoing {
		t.Fatal("a driver error should not kill the connection")
	}

	h, body := decodeReply(t, conn.Bytes())
	if h.Status != virt.StatusError {
		t.Fatalf("expected StatusError, got %s", h.Status)
	}
	rec, err := virt.DecodeErrorRecord(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode error record: %v", err)
	}
	if rec.Code != driver.ErrCodeNoDomain {
		t.Fatalf("expected driver code propagated, got %d", rec.Code)
	}
}

// stubLastErrorFacade implements only what dispatchFrame's driver-error
// branch touches; every other method panics if called, making an
// accidental extra call to the facade visible immediately.
type stubLastErrorFacade struct {
	driver.Facade
	err *driver.Error
}

func (f *stubLastErrorFacade) LastError(conn *driver.Conn) *driver.Error { return f.err }
