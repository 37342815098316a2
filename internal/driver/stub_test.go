package driver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStub_DefaultIdentity(t *testing.T) {
	s := NewStub()
	hostname, err := s.GetHostname(nil)
	require.NoError(t, err)
	assert.Equal(t, "virtd-stub", hostname)

	info, err := s.NodeGetInfo(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(16*1024*1024), info.Memory)
}

func TestNewStubWithOptions_CustomIdentity(t *testing.T) {
	s := NewStubWithOptions(StubOptions{Hostname: "kvm1.example.com", NodeMemoryKB: 32 * 1024 * 1024})

	hostname, err := s.GetHostname(nil)
	require.NoError(t, err)
	assert.Equal(t, "kvm1.example.com", hostname)

	info, err := s.NodeGetInfo(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(32*1024*1024), info.Memory)
}

func TestNewStubWithOptions_DeterministicUUIDNamespace(t *testing.T) {
	ns := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	s1 := NewStubWithOptions(StubOptions{UUIDNamespace: ns})
	d1 := s1.newDomain("web1")

	s2 := NewStubWithOptions(StubOptions{UUIDNamespace: ns})
	d2 := s2.newDomain("web1")

	assert.Equal(t, d1.UUID, d2.UUID, "same namespace and name must derive the same UUID")
}

func TestNewStub_RandomUUIDWithoutNamespace(t *testing.T) {
	s := NewStub()
	d1 := s.newDomain("a")
	d2 := s.newDomain("b")
	assert.NotEqual(t, d1.UUID, d2.UUID)
}
