// Package session holds the per-connection state the dispatch core reads
// and mutates: buffering mode, the live driver connection, and the
// authentication state machine. One Session exists per accepted client
// connection and is never shared across connections.
package session

import (
	"net"
	"sync"

	"github.com/go-virt/virtd/internal/driver"
)

// Mode is the session's current buffering phase.
type Mode int

const (
	ModeRxHeader Mode = iota
	ModeRxBody
	ModeTxPacket
)

// TLSDirection tracks which half of a TLS-wrapped session is pending.
type TLSDirection int

const (
	TLSDirectionRead TLSDirection = iota
	TLSDirectionWrite
)

// Session is the per-connection state the dispatcher reads and mutates.
// It holds no scratch buffer: each inbound frame is read into its own slice
// and each reply is encoded into a fresh buffer, so the codec never has to
// reason about in-place overlap. Mode and TLSDirection are set when the
// session is created and are not updated by the dispatcher.
type Session struct {
	mu sync.Mutex

	Conn net.Conn

	Mode         Mode
	TLSDirection TLSDirection
	ReadOnly     bool

	driverConn *driver.Conn

	auth *AuthState
}

// New creates a Session for an accepted connection. readOnly is set once,
// at accept time, from the listening socket and is never mutated afterward.
func New(conn net.Conn, readOnly bool, authRequired bool) *Session {
	s := &Session{
		Conn:     conn,
		Mode:     ModeRxHeader,
		ReadOnly: readOnly,
	}
	if authRequired {
		s.auth = newAuthState(AuthSASL)
	} else {
		s.auth = newAuthState(AuthNone)
	}
	return s
}

// DriverConn returns the live driver connection, or nil if the session has
// not called Open (or has Close'd).
func (s *Session) DriverConn() *driver.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driverConn
}

// IsOpen reports whether the session holds a live driver connection.
func (s *Session) IsOpen() bool {
	return s.DriverConn() != nil
}

// SetDriverConn records the driver connection created by a successful Open.
// Passing nil clears it, as Close does.
func (s *Session) SetDriverConn(conn *driver.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driverConn = conn
}

// Auth returns the session's authentication state machine.
func (s *Session) Auth() *AuthState {
	return s.auth
}

// RemoteAddr returns the peer address, or "" if unavailable.
func (s *Session) RemoteAddr() string {
	if s.Conn == nil {
		return ""
	}
	return s.Conn.RemoteAddr().String()
}

// LocalAddr returns the local address, or "" if unavailable.
func (s *Session) LocalAddr() string {
	if s.Conn == nil {
		return ""
	}
	return s.Conn.LocalAddr().String()
}
