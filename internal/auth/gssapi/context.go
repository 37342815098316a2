package gssapi

import "fmt"

// MechanismName is the single SASL mechanism this package advertises.
const MechanismName = "GSSAPI"

// Context is a server-side GSSAPI SASL context. gokrb5's AP-REQ
// verification is a single round trip, so the three-call
// AUTH_SASL_INIT/START/STEP shape collapses here: Start does the real
// work and reports complete=true; Step exists only to reject a client
// that ignores that and tries to continue anyway.
type Context struct {
	verifier Verifier
	done     bool
	identity *VerifiedIdentity
}

// NewContext creates a fresh, unauthenticated context backed by verifier.
func NewContext(verifier Verifier) *Context {
	return &Context{verifier: verifier}
}

// Mechanisms reports the mechanisms this context negotiates.
func (c *Context) Mechanisms() []string {
	return []string{MechanismName}
}

// Start verifies the client's AP-REQ token. mechanism must be
// MechanismName; data must be present and non-empty, the AP-REQ (or
// GSS-wrapped AP-REQ) token itself.
func (c *Context) Start(mechanism string, data []byte, hasData bool) (out []byte, outPresent bool, complete bool, err error) {
	if mechanism != MechanismName {
		return nil, false, false, fmt.Errorf("unsupported mechanism %q", mechanism)
	}
	if !hasData || len(data) == 0 {
		return nil, false, false, fmt.Errorf("GSSAPI start requires an AP-REQ token")
	}

	identity, err := c.verifier.VerifyToken(data)
	if err != nil {
		return nil, false, false, fmt.Errorf("gssapi: %w", err)
	}

	c.identity = identity
	c.done = true
	return nil, false, true, nil
}

// Step rejects any continuation attempt: this mechanism never needs one.
func (c *Context) Step(data []byte, hasData bool) (out []byte, outPresent bool, complete bool, err error) {
	if c.done {
		return nil, false, false, fmt.Errorf("gssapi: negotiation already complete")
	}
	return nil, false, false, fmt.Errorf("gssapi: unexpected continuation step")
}

// Identity returns the verified client identity once negotiation has
// completed, or nil beforehand.
func (c *Context) Identity() *VerifiedIdentity {
	return c.identity
}
