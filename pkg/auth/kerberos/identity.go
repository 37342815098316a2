package kerberos

import (
	"fmt"

	"github.com/go-virt/virtd/pkg/config"
)

// PrincipalMapper decides whether an authenticated Kerberos principal is
// allowed to open an RPC session, and what client name is logged for it.
type PrincipalMapper interface {
	// MapPrincipal reports whether principal@realm may proceed past
	// AUTH_SASL_STEP, and the display name to attach to the session.
	MapPrincipal(principal, realm string) (allowed bool, displayName string)
}

// StaticMapper implements PrincipalMapper using a static allow-list read
// from configuration. A file-serving daemon maps a verified principal to a
// Unix UID/GID; a dispatch daemon has no such concept and only needs an
// authorization decision per principal.
type StaticMapper struct {
	allowed     map[string]config.StaticIdentity
	defaultDeny bool
}

// NewStaticMapper creates a mapper from the configured identity mapping
// section. When cfg.DefaultDeny is false, any principal not present in the
// static map is still allowed (useful for realms where the keytab's service
// principal is the only enforcement point).
func NewStaticMapper(cfg *config.IdentityMappingConfig) *StaticMapper {
	allowed := cfg.StaticMap
	if allowed == nil {
		allowed = make(map[string]config.StaticIdentity)
	}
	return &StaticMapper{allowed: allowed, defaultDeny: cfg.DefaultDeny}
}

// MapPrincipal looks up "principal@realm" in the static allow-list.
func (m *StaticMapper) MapPrincipal(principal, realm string) (bool, string) {
	key := fmt.Sprintf("%s@%s", principal, realm)
	if entry, ok := m.allowed[key]; ok {
		name := entry.DisplayName
		if name == "" {
			name = key
		}
		return true, name
	}
	return !m.defaultDeny, key
}
