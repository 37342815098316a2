package wireerr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
)

func TestFromDriverError_MapsCodeDomainLevel(t *testing.T) {
	derr := &driver.Error{Code: driver.ErrCodeNoDomain, Domain: driver.ErrDomainDriver, Level: driver.ErrLevelError, Message: "no domain with matching UUID"}
	rec := FromDriverError(derr)

	if rec.Code != virt.ErrCodeNoDomain {
		t.Fatalf("expected code %d, got %d", virt.ErrCodeNoDomain, rec.Code)
	}
	if rec.Domain != virt.ErrDomainDriver {
		t.Fatalf("expected domain %d, got %d", virt.ErrDomainDriver, rec.Domain)
	}
	if rec.Message == nil || *rec.Message != "no domain with matching UUID" {
		t.Fatalf("message not propagated: %v", rec.Message)
	}
}

func TestFromDriverError_WrapsNonDriverError(t *testing.T) {
	rec := FromDriverError(errors.New("boom"))
	if rec.Code != virt.ErrCodeInternalError {
		t.Fatalf("expected internal error code, got %d", rec.Code)
	}
}

func TestFromDriverError_UnwrapsWrappedDriverError(t *testing.T) {
	derr := &driver.Error{Code: driver.ErrCodeNoNetwork, Domain: driver.ErrDomainDriver, Level: driver.ErrLevelError, Message: "no network"}
	wrapped := errors.Join(errors.New("lookup failed"), derr)
	rec := FromDriverError(wrapped)
	if rec.Code != virt.ErrCodeNoNetwork {
		t.Fatalf("expected errors.As to find the wrapped driver.Error, got code %d", rec.Code)
	}
}

func TestSendError_RoundTrips(t *testing.T) {
	reqHeader := virt.Header{Prog: virt.RemoteProgram, Vers: virt.RemoteProtocolVersion, Proc: 21, Direction: virt.DirectionCall, Status: virt.StatusOK, Serial: 7}
	rec := Generic(virt.ErrCodeNoDomain, "no domain with matching name")

	var buf bytes.Buffer
	if err := SendError(&buf, reqHeader, rec); err != nil {
		t.Fatalf("SendError failed: %v", err)
	}

	body, err := virt.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	r := bytes.NewReader(body)
	replyHeader, err := virt.DecodeHeader(r)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if replyHeader.Direction != virt.DirectionReply || replyHeader.Status != virt.StatusError {
		t.Fatalf("unexpected reply header: %+v", replyHeader)
	}
	if replyHeader.Serial != reqHeader.Serial || replyHeader.Proc != reqHeader.Proc {
		t.Fatalf("reply header did not echo correlation fields: %+v", replyHeader)
	}

	decoded, err := virt.DecodeErrorRecord(r)
	if err != nil {
		t.Fatalf("DecodeErrorRecord failed: %v", err)
	}
	if decoded.Code != virt.ErrCodeNoDomain {
		t.Fatalf("expected code %d, got %d", virt.ErrCodeNoDomain, decoded.Code)
	}
}

func TestSendDefaultError_UsesDefaultReplyHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := SendDefaultError(&buf, Internal(errors.New("frame truncated"))); err != nil {
		t.Fatalf("SendDefaultError failed: %v", err)
	}

	body, err := virt.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	replyHeader, err := virt.DecodeHeader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if replyHeader.Prog != virt.RemoteProgram || replyHeader.Status != virt.StatusError {
		t.Fatalf("expected default reply header shape, got %+v", replyHeader)
	}
}
