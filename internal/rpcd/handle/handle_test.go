package handle

import (
	"errors"
	"testing"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
)

func TestGetNonnullDomain_OverwritesIDFromClient(t *testing.T) {
	s := driver.NewStub()
	dom := s.NewDomainForTest("vm1", true)

	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: 9999}
	resolved, err := GetNonnullDomain(s, nil, desc)
	if err != nil {
		t.Fatalf("GetNonnullDomain failed: %v", err)
	}
	if resolved.ID != 9999 {
		t.Fatalf("expected client-supplied id to overwrite resolved handle, got %d", resolved.ID)
	}
	if resolved.RefCount() != 1 {
		t.Fatalf("expected lookup to increment refcount to 1, got %d", resolved.RefCount())
	}
	s.UnrefDomain(resolved)
}

func TestGetNonnullDomain_UnknownUUID(t *testing.T) {
	s := driver.NewStub()
	_, err := GetNonnullDomain(s, nil, virt.DomainDesc{Name: "ghost", UUID: [16]byte{0xff}})
	if err == nil {
		t.Fatal("expected error for unresolvable domain")
	}
}

func TestMakeNonnullDomain_ReleasesHandle(t *testing.T) {
	s := driver.NewStub()
	dom := s.NewDomainForTest("vm2", false)
	resolved, err := GetNonnullDomain(s, nil, virt.DomainDesc{Name: dom.Name, UUID: dom.UUID})
	if err != nil {
		t.Fatalf("GetNonnullDomain failed: %v", err)
	}
	before := resolved.RefCount()

	desc := MakeNonnullDomain(s, resolved)
	if desc.Name != "vm2" {
		t.Fatalf("expected name vm2, got %q", desc.Name)
	}
	if resolved.RefCount() != before-1 {
		t.Fatalf("expected refcount to drop by one, got %d (was %d)", resolved.RefCount(), before)
	}
}

func TestWithDomain_ReleasesOnSuccess(t *testing.T) {
	s := driver.NewStub()
	dom := s.NewDomainForTest("vm3", true)
	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID}

	err := WithDomain(s, nil, desc, func(d *driver.Domain) error {
		if d.Name != "vm3" {
			t.Fatalf("unexpected domain in closure: %q", d.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithDomain failed: %v", err)
	}
	if dom.RefCount() != 0 {
		t.Fatalf("expected refcount restored to 0 after release, got %d", dom.RefCount())
	}
}

func TestWithDomain_ReleasesOnError(t *testing.T) {
	s := driver.NewStub()
	dom := s.NewDomainForTest("vm4", true)
	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID}

	wantErr := errors.New("operation failed")
	err := WithDomain(s, nil, desc, func(d *driver.Domain) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if dom.RefCount() != 0 {
		t.Fatalf("expected handle released even on error, got refcount %d", dom.RefCount())
	}
}

func TestWithDomain_SuppressedReleaseForConsumingOperations(t *testing.T) {
	s := driver.NewStub()
	dom := s.NewDomainForTest("vm5", true)
	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID}

	err := WithDomain(s, nil, desc, func(d *driver.Domain) error {
		s.UnrefDomain(d) // simulates DomainDestroy consuming the reference itself
		return Suppressed(nil)
	})
	if err != nil {
		t.Fatalf("expected nil error from suppressed success, got %v", err)
	}
	if dom.RefCount() != 0 {
		t.Fatalf("expected exactly one release (by the operation), got refcount %d", dom.RefCount())
	}
}

func TestWithNetwork_ReleasesOnSuccess(t *testing.T) {
	s := driver.NewStub()
	net := s.NewNetworkForTest("net1", true)
	desc := virt.NetworkDesc{Name: net.Name, UUID: net.UUID}

	err := WithNetwork(s, nil, desc, func(n *driver.Network) error {
		return nil
	})
	if err != nil {
		t.Fatalf("WithNetwork failed: %v", err)
	}
	if net.RefCount() != 0 {
		t.Fatalf("expected refcount restored to 0, got %d", net.RefCount())
	}
}
