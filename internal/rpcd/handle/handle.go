// Package handle is the bridge between wire descriptors (virt.DomainDesc,
// virt.NetworkDesc) and live driver handles (driver.Domain, driver.Network).
// It is the only place handlers acquire or release a live handle, so
// reference-count discipline lives in one spot instead of being
// re-implemented per handler.
package handle

import (
	"fmt"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/metrics"
	"github.com/go-virt/virtd/internal/protocol/virt"
)

// metricsRegistry is installed once at startup via SetMetrics, mirroring
// internal/logger's package-level configuration. A nil registry (the
// default) makes every observation below a no-op.
var metricsRegistry *metrics.Registry

// SetMetrics installs the registry that GetNonnull*/MakeNonnull*/With*
// report handle acquisition and release against.
func SetMetrics(reg *metrics.Registry) {
	metricsRegistry = reg
}

// GetNonnullDomain resolves desc against the driver facade by UUID and
// returns the live, ref-counted Domain. desc.Name is not compared with the
// resolved domain; it appears only in the error message.
//
// Trust-the-client point: on success the resolved handle's ID is
// overwritten with desc.ID as supplied by the caller, without verifying it
// against the driver's own notion of the domain's id. This mirrors the
// wire protocol's historical behavior and is called out here rather than
// silently fixed, since a client can drive a handle under a spoofed id.
func GetNonnullDomain(f driver.Facade, conn *driver.Conn, desc virt.DomainDesc) (*driver.Domain, error) {
	dom, err := f.DomainLookupByUUID(conn, desc.UUID)
	if err != nil {
		return nil, fmt.Errorf("resolve domain %q: %w", desc.Name, err)
	}
	dom.ID = desc.ID
	metricsRegistry.HandleAcquired("domain")
	return dom, nil
}

// GetNonnullNetwork resolves desc against the driver facade by UUID and
// returns the live, ref-counted Network. desc.Name is not compared with the
// resolved network; it appears only in the error message.
func GetNonnullNetwork(f driver.Facade, conn *driver.Conn, desc virt.NetworkDesc) (*driver.Network, error) {
	net, err := f.NetworkLookupByUUID(conn, desc.UUID)
	if err != nil {
		return nil, fmt.Errorf("resolve network %q: %w", desc.Name, err)
	}
	metricsRegistry.HandleAcquired("network")
	return net, nil
}

// MakeNonnullDomain copies the wire-relevant fields out of a live handle
// into an owned descriptor, then releases the handle. Callers must not
// touch dom after this returns.
func MakeNonnullDomain(f driver.Facade, dom *driver.Domain) virt.DomainDesc {
	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: dom.ID}
	f.UnrefDomain(dom)
	metricsRegistry.HandleReleased("domain")
	return desc
}

// MakeNonnullNetwork copies the wire-relevant fields out of a live handle
// into an owned descriptor, then releases the handle.
func MakeNonnullNetwork(f driver.Facade, net *driver.Network) virt.NetworkDesc {
	desc := virt.NetworkDesc{Name: net.Name, UUID: net.UUID}
	f.UnrefNetwork(net)
	metricsRegistry.HandleReleased("network")
	return desc
}

// WithDomain resolves desc, invokes fn with the live handle, and releases
// the handle on every exit path — including a panic, which it re-raises
// after releasing so the session loop's recovery still sees it. Handlers
// whose handle the driver itself consumes (Destroy) return Suppressed(err)
// from fn, which skips the facade release.
func WithDomain(f driver.Facade, conn *driver.Conn, desc virt.DomainDesc, fn func(dom *driver.Domain) error) error {
	dom, err := GetNonnullDomain(f, conn, desc)
	if err != nil {
		return err
	}
	release := true
	defer func() {
		if release {
			f.UnrefDomain(dom)
			metricsRegistry.HandleReleased("domain")
		}
	}()

	if err := fn(dom); err != nil {
		if suppressed, ok := err.(*ReleaseSuppressedError); ok {
			release = false
			metricsRegistry.HandleReleased("domain")
			return suppressed.Unwrap()
		}
		return err
	}
	return nil
}

// WithNetwork resolves desc, invokes fn with the live handle, and releases
// it on every exit path, mirroring WithDomain.
func WithNetwork(f driver.Facade, conn *driver.Conn, desc virt.NetworkDesc, fn func(net *driver.Network) error) error {
	net, err := GetNonnullNetwork(f, conn, desc)
	if err != nil {
		return err
	}
	defer func() {
		f.UnrefNetwork(net)
		metricsRegistry.HandleReleased("network")
	}()
	return fn(net)
}

// ReleaseSuppressedError marks that the wrapped operation already consumed
// the handle's reference (e.g. DomainDestroy), so WithDomain must not
// release it again.
type ReleaseSuppressedError struct {
	err error
}

// Suppressed wraps err (nil for success) to signal the handle was already
// released by the operation fn performed.
func Suppressed(err error) *ReleaseSuppressedError {
	return &ReleaseSuppressedError{err: err}
}

func (e *ReleaseSuppressedError) Error() string {
	if e.err == nil {
		return "handle release suppressed"
	}
	return e.err.Error()
}

func (e *ReleaseSuppressedError) Unwrap() error {
	return e.err
}
