package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// AuthListRet is AUTH_LIST's reply: the singleton list [client.auth].
type AuthListRet struct{ Types []uint32 }

func DecodeAuthListRet(r io.Reader) (AuthListRet, error) {
	types, err := xdr.DecodeUint32Array(r, AuthTypeListMax)
	return AuthListRet{Types: types}, err
}
func (ret AuthListRet) Encode(buf *bytes.Buffer) error { return xdr.WriteUint32Array(buf, ret.Types) }

// AuthSaslInitRet carries the comma-separated mechanism list.
type AuthSaslInitRet struct{ Mechlist string }

func DecodeAuthSaslInitRet(r io.Reader) (AuthSaslInitRet, error) {
	s, err := xdr.DecodeString(r)
	return AuthSaslInitRet{Mechlist: s}, err
}
func (ret AuthSaslInitRet) Encode(buf *bytes.Buffer) error { return xdr.WriteXDRString(buf, ret.Mechlist) }

func decodeSaslData(r io.Reader) (data []byte, hasData bool, err error) {
	present, err := xdr.DecodeOptionalPresence(r)
	if err != nil || !present {
		return nil, false, err
	}
	data, err = xdr.DecodeOpaque(r)
	if err != nil {
		return nil, false, err
	}
	if err := xdr.CheckArrayCap(uint32(len(data)), AuthSaslDataMax); err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func encodeSaslData(buf *bytes.Buffer, data []byte, hasData bool) error {
	if err := xdr.WriteOptionalPresence(buf, hasData); err != nil {
		return err
	}
	if hasData {
		return xdr.WriteXDROpaque(buf, data)
	}
	return nil
}

// AuthSaslStartArgs is AUTH_SASL_START's argument: the client-chosen
// mechanism and its first response. HasData distinguishes a true nil
// payload from an empty one, a distinction SASL treats as significant.
type AuthSaslStartArgs struct {
	Mechanism string
	Data      []byte
	HasData   bool
}

func DecodeAuthSaslStartArgs(r io.Reader) (AuthSaslStartArgs, error) {
	var a AuthSaslStartArgs
	var err error
	if a.Mechanism, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	a.Data, a.HasData, err = decodeSaslData(r)
	return a, err
}
func (a AuthSaslStartArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, a.Mechanism); err != nil {
		return err
	}
	return encodeSaslData(buf, a.Data, a.HasData)
}

// AuthSaslStepArgs is AUTH_SASL_STEP's argument: one continuation payload.
type AuthSaslStepArgs struct {
	Data    []byte
	HasData bool
}

func DecodeAuthSaslStepArgs(r io.Reader) (AuthSaslStepArgs, error) {
	var a AuthSaslStepArgs
	var err error
	a.Data, a.HasData, err = decodeSaslData(r)
	return a, err
}
func (a AuthSaslStepArgs) Encode(buf *bytes.Buffer) error {
	return encodeSaslData(buf, a.Data, a.HasData)
}

// AuthSaslResultRet is the common reply shape for both AUTH_SASL_START and
// AUTH_SASL_STEP: the server's response data (if any) and whether
// negotiation is complete.
type AuthSaslResultRet struct {
	Data     []byte
	HasData  bool
	Complete int32
}

func DecodeAuthSaslResultRet(r io.Reader) (AuthSaslResultRet, error) {
	var ret AuthSaslResultRet
	var err error
	ret.Data, ret.HasData, err = decodeSaslData(r)
	if err != nil {
		return ret, err
	}
	ret.Complete, err = xdr.DecodeInt32(r)
	return ret, err
}
func (ret AuthSaslResultRet) Encode(buf *bytes.Buffer) error {
	if err := encodeSaslData(buf, ret.Data, ret.HasData); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, ret.Complete)
}
