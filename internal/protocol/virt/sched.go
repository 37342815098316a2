package virt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// SchedParamKind is the discriminant of the SchedParamValue tagged union.
type SchedParamKind uint32

const (
	SchedParamInt SchedParamKind = iota
	SchedParamUint
	SchedParamLLong
	SchedParamULLong
	SchedParamDouble
	SchedParamBoolean
)

func (k SchedParamKind) valid() bool {
	return k <= SchedParamBoolean
}

// SchedParamValue is a discriminated union over the six scheduler parameter
// value types. Only the field matching Kind is meaningful.
type SchedParamValue struct {
	Kind SchedParamKind
	I    int32
	UI   uint32
	LL   int64
	ULL  uint64
	D    float64
	B    bool
}

// Encode writes the discriminant followed by the active variant's body.
func (v SchedParamValue) Encode(buf *bytes.Buffer) error {
	if err := xdr.EncodeUnionDiscriminant(buf, uint32(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case SchedParamInt:
		return xdr.WriteInt32(buf, v.I)
	case SchedParamUint:
		return xdr.WriteUint32(buf, v.UI)
	case SchedParamLLong:
		return xdr.WriteInt64(buf, v.LL)
	case SchedParamULLong:
		return xdr.WriteUint64(buf, v.ULL)
	case SchedParamDouble:
		bits := float64bits(v.D)
		return xdr.WriteUint64(buf, bits)
	case SchedParamBoolean:
		return xdr.WriteBool(buf, v.B)
	default:
		return fmt.Errorf("encode sched param: unknown discriminant %d", v.Kind)
	}
}

// DecodeSchedParamValue reads the discriminant and the matching variant
// body, rejecting unknown discriminants instead of guessing a shape.
func DecodeSchedParamValue(r io.Reader) (SchedParamValue, error) {
	disc, err := xdr.DecodeUnionDiscriminant(r)
	if err != nil {
		return SchedParamValue{}, fmt.Errorf("decode sched param discriminant: %w", err)
	}
	kind := SchedParamKind(disc)
	if !kind.valid() {
		return SchedParamValue{}, fmt.Errorf("decode sched param: unknown discriminant %d", disc)
	}

	v := SchedParamValue{Kind: kind}
	switch kind {
	case SchedParamInt:
		v.I, err = xdr.DecodeInt32(r)
	case SchedParamUint:
		v.UI, err = xdr.DecodeUint32(r)
	case SchedParamLLong:
		v.LL, err = xdr.DecodeInt64(r)
	case SchedParamULLong:
		v.ULL, err = xdr.DecodeUint64(r)
	case SchedParamDouble:
		var bits uint64
		bits, err = xdr.DecodeUint64(r)
		v.D = float64frombits(bits)
	case SchedParamBoolean:
		v.B, err = xdr.DecodeBool(r)
	}
	if err != nil {
		return SchedParamValue{}, fmt.Errorf("decode sched param value: %w", err)
	}
	return v, nil
}

// SchedParam pairs a scheduler field name (truncated/null-terminated to
// SchedFieldNameLen on the wire) with its typed value.
type SchedParam struct {
	Field string
	Value SchedParamValue
}

// Encode writes the field name truncated to SchedFieldNameLen followed by
// the typed value.
func (p SchedParam) Encode(buf *bytes.Buffer) error {
	field := p.Field
	if len(field) > SchedFieldNameLen {
		field = field[:SchedFieldNameLen]
	}
	if err := xdr.WriteXDRString(buf, field); err != nil {
		return fmt.Errorf("encode sched param field: %w", err)
	}
	return p.Value.Encode(buf)
}

// DecodeSchedParam reads one SchedParam entry.
func DecodeSchedParam(r io.Reader) (SchedParam, error) {
	field, err := xdr.DecodeString(r)
	if err != nil {
		return SchedParam{}, fmt.Errorf("decode sched param field: %w", err)
	}
	if len(field) > SchedFieldNameLen {
		field = field[:SchedFieldNameLen]
	}
	value, err := DecodeSchedParamValue(r)
	if err != nil {
		return SchedParam{}, err
	}
	return SchedParam{Field: field, Value: value}, nil
}

// DecodeSchedParamArray decodes a variable-length array of SchedParam,
// capped at SchedulerParametersMax.
func DecodeSchedParamArray(r io.Reader) ([]SchedParam, error) {
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode sched param array count: %w", err)
	}
	if err := xdr.CheckArrayCap(count, SchedulerParametersMax); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	out := make([]SchedParam, count)
	for i := range out {
		p, err := DecodeSchedParam(r)
		if err != nil {
			return nil, fmt.Errorf("decode sched param array entry %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// EncodeSchedParamArray encodes a variable-length array of SchedParam.
func EncodeSchedParamArray(buf *bytes.Buffer, params []SchedParam) error {
	if err := xdr.WriteUint32(buf, uint32(len(params))); err != nil {
		return fmt.Errorf("encode sched param array count: %w", err)
	}
	for i, p := range params {
		if err := p.Encode(buf); err != nil {
			return fmt.Errorf("encode sched param array entry %d: %w", i, err)
		}
	}
	return nil
}
