package gssapi

import "testing"

func TestExtractAPReqRawToken(t *testing.T) {
	rawAPReq := []byte{0x6E, 0x82, 0x01, 0x00}
	result, err := extractAPReq(rawAPReq)
	if err != nil {
		t.Fatalf("extractAPReq failed for raw token: %v", err)
	}
	if string(result) != string(rawAPReq) {
		t.Fatal("expected raw AP-REQ to be returned as-is")
	}
}

func TestExtractAPReqWrappedToken(t *testing.T) {
	// Build a GSS-API initial context token: 0x60 [length] 0x06 [oid-len]
	// [oid] [token-id] [ap-req]. Per RFC 1964 §1.1 the AP-REQ token ID is
	// 0x01 0x00.
	apReqData := []byte{0x6E, 0x03, 0x01, 0x02, 0x03}
	oid := []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, 0x12, 0x01, 0x02, 0x02} // krb5 OID
	tokenID := []byte{0x01, 0x00}

	token := []byte{0x60}
	innerLen := 2 + len(oid) + len(tokenID) + len(apReqData)
	token = append(token, byte(innerLen))
	token = append(token, 0x06)
	token = append(token, byte(len(oid)))
	token = append(token, oid...)
	token = append(token, tokenID...)
	token = append(token, apReqData...)

	result, err := extractAPReq(token)
	if err != nil {
		t.Fatalf("extractAPReq failed for wrapped token: %v", err)
	}
	if string(result) != string(apReqData) {
		t.Fatalf("expected AP-REQ data, got %v", result)
	}
}

func TestExtractAPReqTooShort(t *testing.T) {
	_, err := extractAPReq([]byte{0x60})
	if err == nil {
		t.Fatal("expected error for token too short")
	}
}

func TestExtractAPReqWrongTokenID(t *testing.T) {
	apReqData := []byte{0x6E, 0x01}
	oid := []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, 0x12, 0x01, 0x02, 0x02}
	tokenID := []byte{0x02, 0x00} // AP-REP token ID, not AP-REQ

	token := []byte{0x60}
	innerLen := 2 + len(oid) + len(tokenID) + len(apReqData)
	token = append(token, byte(innerLen))
	token = append(token, 0x06)
	token = append(token, byte(len(oid)))
	token = append(token, oid...)
	token = append(token, tokenID...)
	token = append(token, apReqData...)

	_, err := extractAPReq(token)
	if err == nil {
		t.Fatal("expected error for non-AP-REQ token ID")
	}
}
