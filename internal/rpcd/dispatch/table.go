package dispatch

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/virt"
)

// Outcome is the ternary result every handler reports, per the dispatch
// table design: success with a reply body, a driver-level failure the
// dispatcher must synthesize an error for, or a dispatch-level failure the
// handler has already replied to.
type Outcome int

const (
	// OutcomeSuccess: ret holds the reply body, encode it and send OK.
	OutcomeSuccess Outcome = 0
	// OutcomeDriverError: the driver facade failed; synthesize an error
	// record from its last-error slot (or a generic fallback).
	OutcomeDriverError Outcome = -1
	// OutcomeDispatchError: the handler already wrote an error reply;
	// the dispatcher must not write anything further.
	OutcomeDispatchError Outcome = -2
)

// Encodable is any wire result type; every *Ret/*Args struct in
// internal/protocol/virt implements it.
type Encodable interface {
	Encode(buf *bytes.Buffer) error
}

// HandlerFunc is the uniform shape every procedure table entry binds to a
// procedure number. body is the still-unconsumed request payload (the
// header has already been stripped); w is the connection to write an
// error reply to directly, for handlers that need to emit one themselves
// (OutcomeDispatchError).
type HandlerFunc func(hc *HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (ret Encodable, outcome Outcome)

// procedureEntry binds one procedure number to its handler. ArgDecoder and
// RetEncoder are documented on the handler itself in this Go rendition:
// each HandlerFunc decodes its own typed argument record from body and
// returns an Encodable result, rather than the table separately holding
// decode/encode function values — the types already carry that behavior as
// methods, so splitting it out here would just be indirection.
type procedureEntry struct {
	Name    string
	Handler HandlerFunc
}

// procedureTable is the dispatch table keyed by procedure number. It starts
// nil and is filled by Register calls from the init() of each handler
// category file in internal/rpcd/handlers; there is no generator and no
// literal table.
var procedureTable map[uint32]*procedureEntry

// Register binds handler to proc. Called from internal/rpcd/handlers'
// package init functions, one per category file, so the table is fully
// populated before the first Serve call.
func Register(proc uint32, handler HandlerFunc) {
	if procedureTable == nil {
		procedureTable = make(map[uint32]*procedureEntry)
	}
	procedureTable[proc] = &procedureEntry{Name: virt.ProcedureName(proc), Handler: handler}
}

// Lookup returns the table entry for proc, or nil if proc is unknown.
func Lookup(proc uint32) (name string, handler HandlerFunc, ok bool) {
	entry, ok := procedureTable[proc]
	if !ok {
		return "", nil, false
	}
	return entry.Name, entry.Handler, true
}
