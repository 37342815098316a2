package session

import "sync"

// AuthType mirrors the wire auth type enum: NONE admits every procedure,
// SASL restricts the session to the pre-auth set until negotiation
// completes.
type AuthType uint32

const (
	AuthNone AuthType = 0
	AuthSASL AuthType = 1
)

// Mechanism is the opaque SASL server context interface the auth gate
// negotiates through. It is implemented by a concrete mechanism backend
// (internal/auth/gssapi.Context); the session package never depends on that
// backend directly, and the dispatch package holds only the gssapi.Verifier
// that contexts are built from, matching the "SASL library internals are a
// black box" boundary.
type Mechanism interface {
	// Mechanisms returns the mechanism names this context can negotiate,
	// in advertisement order.
	Mechanisms() []string

	// Start processes the client's AUTH_SASL_START payload for the named
	// mechanism. hasData distinguishes a true nil payload from an empty
	// one, a distinction SASL treats as significant.
	Start(mechanism string, data []byte, hasData bool) (out []byte, outPresent bool, complete bool, err error)

	// Step processes one AUTH_SASL_STEP payload.
	Step(data []byte, hasData bool) (out []byte, outPresent bool, complete bool, err error)
}

// AuthState is the session's authentication state machine: it makes the
// "only these four procedures are admitted while unauthenticated" rule
// total at the type level instead of a free-floating boolean flag.
type AuthState struct {
	mu       sync.Mutex
	current  AuthType
	sasl     Mechanism
}

func newAuthState(required AuthType) *AuthState {
	return &AuthState{current: required}
}

// Current returns the session's current auth requirement, the value the
// wire protocol calls client.auth and AUTH_LIST reports.
func (a *AuthState) Current() AuthType {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// NeedsAuth reports whether procedures outside the pre-auth set must still
// be rejected.
func (a *AuthState) NeedsAuth() bool {
	return a.Current() != AuthNone
}

// Context returns the live SASL mechanism context, or nil if
// AUTH_SASL_INIT has not yet been called.
func (a *AuthState) Context() Mechanism {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sasl
}

// BeginNegotiation installs a freshly created SASL context. It fails if one
// already exists, matching the AUTH_SASL_INIT precondition.
func (a *AuthState) BeginNegotiation(ctx Mechanism) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sasl != nil {
		return false
	}
	a.sasl = ctx
	return true
}

// Complete transitions the session to PRE_AUTH_NONE, admitting every
// procedure, and tears down the SASL context (its negotiation is over).
func (a *AuthState) Complete() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = AuthNone
	a.sasl = nil
}

// Abort tears down a SASL context after a negotiation failure without
// changing the auth requirement; the client must start over from
// AUTH_SASL_INIT.
func (a *AuthState) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sasl = nil
}
