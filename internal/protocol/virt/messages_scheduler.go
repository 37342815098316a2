package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

type DomainGetSchedulerTypeRet struct {
	Type    string
	Nparams int32
}

func DecodeDomainGetSchedulerTypeRet(r io.Reader) (DomainGetSchedulerTypeRet, error) {
	var ret DomainGetSchedulerTypeRet
	var err error
	if ret.Type, err = xdr.DecodeString(r); err != nil {
		return ret, err
	}
	ret.Nparams, err = xdr.DecodeInt32(r)
	return ret, err
}
func (ret DomainGetSchedulerTypeRet) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, ret.Type); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, ret.Nparams)
}

type DomainGetSchedulerParametersArgs struct {
	Dom     DomainDesc
	Nparams int32
}

func DecodeDomainGetSchedulerParametersArgs(r io.Reader) (DomainGetSchedulerParametersArgs, error) {
	var a DomainGetSchedulerParametersArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Nparams, err = xdr.DecodeInt32(r)
	return a, err
}
func (a DomainGetSchedulerParametersArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return xdr.WriteInt32(buf, a.Nparams)
}

type DomainSchedulerParametersRet struct{ Params []SchedParam }

func DecodeDomainSchedulerParametersRet(r io.Reader) (DomainSchedulerParametersRet, error) {
	params, err := DecodeSchedParamArray(r)
	return DomainSchedulerParametersRet{Params: params}, err
}
func (ret DomainSchedulerParametersRet) Encode(buf *bytes.Buffer) error {
	return EncodeSchedParamArray(buf, ret.Params)
}

type DomainSetSchedulerParametersArgs struct {
	Dom    DomainDesc
	Params []SchedParam
}

func DecodeDomainSetSchedulerParametersArgs(r io.Reader) (DomainSetSchedulerParametersArgs, error) {
	var a DomainSetSchedulerParametersArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	a.Params, err = DecodeSchedParamArray(r)
	return a, err
}
func (a DomainSetSchedulerParametersArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	return EncodeSchedParamArray(buf, a.Params)
}
