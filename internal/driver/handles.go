package driver

import "sync/atomic"

// Conn is the opaque live connection handle created by Open and destroyed
// by Close. The dispatch core never inspects its fields; it only threads
// the pointer back into subsequent Facade calls.
type Conn struct {
	Name     string
	ReadOnly bool

	lastErr atomic.Pointer[Error]
}

// SetLastError records the most recent driver-level failure on this
// connection, consulted by the error synthesizer when a handler reports
// OutcomeDriverError.
func (c *Conn) SetLastError(err *Error) {
	c.lastErr.Store(err)
}

// LastError returns the most recently recorded driver-level failure, or nil.
func (c *Conn) LastError() *Error {
	return c.lastErr.Load()
}

// Domain is a live, reference-counted handle to a virtual machine.
//
// RefCount is incremented by every lookup/creation call that hands the
// caller a reference and decremented by UnrefDomain; the object is
// considered live as long as RefCount > 0. This mirrors the acquire/release
// discipline every handler must observe (internal/rpcd/handle).
type Domain struct {
	Name string
	UUID [16]byte
	ID   int32

	refCount   atomic.Int32
	persistent atomic.Bool
	autostart  atomic.Bool
	state      atomic.Int32
	maxMemKB   atomic.Uint64
	memoryKB   atomic.Uint64
	nrVirtCPU  atomic.Uint32
	xmlDesc    atomic.Pointer[string]
}

// Network is a live, reference-counted handle to a virtual network.
type Network struct {
	Name string
	UUID [16]byte

	refCount  atomic.Int32
	active    atomic.Bool
	autostart atomic.Bool
	xmlDesc   atomic.Pointer[string]
}
