package gssapi

import "testing"

type stubVerifier struct {
	identity *VerifiedIdentity
	err      error
}

func (s *stubVerifier) VerifyToken(token []byte) (*VerifiedIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func TestContext_Mechanisms(t *testing.T) {
	c := NewContext(&stubVerifier{})
	mechs := c.Mechanisms()
	if len(mechs) != 1 || mechs[0] != MechanismName {
		t.Fatalf("expected [%s], got %v", MechanismName, mechs)
	}
}

func TestContext_Start_Success(t *testing.T) {
	want := &VerifiedIdentity{Principal: "host/virtd.example.com", Realm: "EXAMPLE.COM"}
	c := NewContext(&stubVerifier{identity: want})

	out, outPresent, complete, err := c.Start(MechanismName, []byte("token-bytes"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outPresent || out != nil {
		t.Fatalf("expected no output payload, got present=%v out=%v", outPresent, out)
	}
	if !complete {
		t.Fatalf("expected negotiation to complete in one round")
	}
	if got := c.Identity(); got == nil || got.Principal != want.Principal {
		t.Fatalf("identity not recorded: %v", got)
	}
}

func TestContext_Start_WrongMechanism(t *testing.T) {
	c := NewContext(&stubVerifier{})
	_, _, _, err := c.Start("DIGEST-MD5", []byte("x"), true)
	if err == nil {
		t.Fatal("expected error for unsupported mechanism")
	}
}

func TestContext_Start_NoData(t *testing.T) {
	c := NewContext(&stubVerifier{})
	_, _, _, err := c.Start(MechanismName, nil, false)
	if err == nil {
		t.Fatal("expected error when start data absent")
	}
}

func TestContext_Start_VerificationFailure(t *testing.T) {
	c := NewContext(&stubVerifier{err: errBadToken{}})
	_, _, complete, err := c.Start(MechanismName, []byte("bogus"), true)
	if err == nil {
		t.Fatal("expected verification failure to surface")
	}
	if complete {
		t.Fatal("failed negotiation must not report complete")
	}
}

func TestContext_Step_AlwaysRejected(t *testing.T) {
	c := NewContext(&stubVerifier{identity: &VerifiedIdentity{Principal: "p"}})
	if _, _, _, err := c.Start(MechanismName, []byte("token"), true); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, _, _, err := c.Step([]byte("more"), true); err == nil {
		t.Fatal("expected Step to reject continuation after completion")
	}
}

type errBadToken struct{}

func (errBadToken) Error() string { return "bad token" }
