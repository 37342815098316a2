// Package gssapi implements the GSSAPI/Kerberos SASL mechanism backing the
// dispatch core's auth gate. It is the concrete answer to "SASL library
// internals are a black box": the auth gate only ever talks to the
// session.Mechanism interface, and this package is the one real
// implementation of it, built on gokrb5's AP-REQ verification.
package gssapi

import (
	"fmt"

	"github.com/jcmturner/gokrb5/v8/messages"
	"github.com/jcmturner/gokrb5/v8/service"

	"github.com/go-virt/virtd/pkg/auth/kerberos"
)

// VerifiedIdentity is the outcome of a successful AP-REQ verification.
type VerifiedIdentity struct {
	Principal string
	Realm     string
}

// Verifier abstracts AP-REQ verification so the mechanism context can be
// tested without a real KDC/keytab.
type Verifier interface {
	VerifyToken(gssToken []byte) (*VerifiedIdentity, error)
}

// Krb5Verifier verifies GSSAPI initial tokens (AP-REQ, optionally wrapped
// in the RFC 2743 GSS initial-context-token envelope) against a keytab via
// gokrb5's service package.
type Krb5Verifier struct {
	provider *kerberos.Provider
}

// NewKrb5Verifier builds a verifier backed by provider's keytab and
// service principal.
func NewKrb5Verifier(provider *kerberos.Provider) *Krb5Verifier {
	return &Krb5Verifier{provider: provider}
}

// VerifyToken unwraps gssToken if GSS-wrapped, parses it as an AP-REQ, and
// verifies it against the configured keytab and service principal.
func (v *Krb5Verifier) VerifyToken(gssToken []byte) (*VerifiedIdentity, error) {
	apReqBytes, err := extractAPReq(gssToken)
	if err != nil {
		return nil, fmt.Errorf("extract AP-REQ from GSS token: %w", err)
	}

	var apReq messages.APReq
	if err := apReq.Unmarshal(apReqBytes); err != nil {
		return nil, fmt.Errorf("unmarshal AP-REQ: %w", err)
	}

	settings := service.NewSettings(
		v.provider.Keytab(),
		service.MaxClockSkew(v.provider.MaxClockSkew()),
		service.DecodePAC(false),
		service.KeytabPrincipal(v.provider.ServicePrincipal()),
	)

	ok, creds, err := service.VerifyAPREQ(&apReq, settings)
	if err != nil {
		return nil, fmt.Errorf("verify AP-REQ: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("AP-REQ verification failed")
	}

	return &VerifiedIdentity{
		Principal: creds.CName().PrincipalNameString(),
		Realm:     creds.Domain(),
	}, nil
}

// extractAPReq strips the GSS-API initial context token wrapper (RFC 2743
// §3.1, RFC 1964 §1.1) if present, leaving the raw AP-REQ. A token not
// starting with the 0x60 application tag is assumed to already be a raw
// AP-REQ.
func extractAPReq(token []byte) ([]byte, error) {
	if len(token) < 2 {
		return nil, fmt.Errorf("token too short: %d bytes", len(token))
	}
	if token[0] != 0x60 {
		return token, nil
	}

	offset := 1
	length, bytesRead, err := parseASN1Length(token[offset:])
	if err != nil {
		return nil, fmt.Errorf("parse GSS token length: %w", err)
	}
	offset += bytesRead

	if offset+int(length) > len(token) {
		return nil, fmt.Errorf("GSS token truncated: expected %d bytes, have %d", offset+int(length), len(token))
	}
	if offset >= len(token) || token[offset] != 0x06 {
		return nil, fmt.Errorf("expected OID tag 0x06 at offset %d", offset)
	}
	offset++

	if offset >= len(token) {
		return nil, fmt.Errorf("truncated OID length")
	}
	oidLen := int(token[offset])
	offset++
	offset += oidLen
	if offset > len(token) {
		return nil, fmt.Errorf("truncated after OID")
	}

	if offset+2 > len(token) {
		return nil, fmt.Errorf("truncated token ID")
	}
	tokenID := (uint16(token[offset]) << 8) | uint16(token[offset+1])
	if tokenID != 0x0100 {
		return nil, fmt.Errorf("unexpected krb5 token ID: 0x%04x (expected 0x0100 for AP-REQ)", tokenID)
	}
	offset += 2

	return token[offset:], nil
}

// parseASN1Length parses a BER/DER length octet sequence as used by the GSS
// initial-context-token's outer application tag.
func parseASN1Length(data []byte) (length int, bytesRead int, err error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("empty length field")
	}
	first := data[0]
	if first&0x80 == 0 {
		return int(first), 1, nil
	}
	numBytes := int(first & 0x7f)
	if numBytes == 0 || numBytes > 4 || len(data) < 1+numBytes {
		return 0, 0, fmt.Errorf("invalid long-form ASN.1 length")
	}
	length = 0
	for i := 0; i < numBytes; i++ {
		length = (length << 8) | int(data[1+i])
	}
	return length, 1 + numBytes, nil
}
