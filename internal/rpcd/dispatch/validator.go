package dispatch

import (
	"fmt"

	"github.com/go-virt/virtd/internal/protocol/virt"
)

// ValidateHeader enforces the four equality checks every inbound frame
// must pass before any handler runs: program id, protocol version,
// direction, and status. The reply header built from a failing request
// still echoes prog/vers/proc/serial, so even a protocol-mismatched client
// can correlate the rejection.
func ValidateHeader(h virt.Header) error {
	if h.Prog != virt.RemoteProgram {
		return fmt.Errorf("unexpected program id %#x (expected %#x)", h.Prog, virt.RemoteProgram)
	}
	if h.Vers != virt.RemoteProtocolVersion {
		return fmt.Errorf("version mismatch: got %d, expected %d", h.Vers, virt.RemoteProtocolVersion)
	}
	if h.Direction != virt.DirectionCall {
		return fmt.Errorf("unexpected direction %s (expected CALL)", h.Direction)
	}
	if h.Status != virt.StatusOK {
		return fmt.Errorf("unexpected status %s on a call (expected OK)", h.Status)
	}
	return nil
}
