package kerberos

import (
	"testing"

	"github.com/go-virt/virtd/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestStaticMapper_KnownPrincipalAllowed(t *testing.T) {
	mapper := NewStaticMapper(&config.IdentityMappingConfig{
		StaticMap: map[string]config.StaticIdentity{
			"alice@EXAMPLE.COM": {DisplayName: "Alice Admin"},
		},
	})

	allowed, name := mapper.MapPrincipal("alice", "EXAMPLE.COM")
	require.True(t, allowed)
	require.Equal(t, "Alice Admin", name)
}

func TestStaticMapper_UnknownPrincipalDefaultAllow(t *testing.T) {
	mapper := NewStaticMapper(&config.IdentityMappingConfig{})

	allowed, name := mapper.MapPrincipal("bob", "EXAMPLE.COM")
	require.True(t, allowed)
	require.Equal(t, "bob@EXAMPLE.COM", name)
}

func TestStaticMapper_UnknownPrincipalDefaultDeny(t *testing.T) {
	mapper := NewStaticMapper(&config.IdentityMappingConfig{DefaultDeny: true})

	allowed, _ := mapper.MapPrincipal("mallory", "EXAMPLE.COM")
	require.False(t, allowed)
}
