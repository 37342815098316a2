package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// DecodeInt64 decodes a 64-bit signed integer from XDR format.
//
// Per RFC 4506 Section 4.5 (Hyper Integer):
// Signed 64-bit integers are encoded in big-endian byte order using
// two's complement representation.
func DecodeInt64(reader io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return v, nil
}

// DecodeFixedOpaque decodes a fixed-length opaque blob (no length prefix),
// padded to a 4-byte boundary per RFC 4506 Section 4.9.
func DecodeFixedOpaque(reader io.Reader, n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read fixed opaque: %w", err)
	}

	padding := (4 - (n % 4)) % 4
	if padding > 0 {
		var padBuf [3]byte
		if _, err := io.ReadFull(reader, padBuf[:padding]); err != nil {
			return nil, fmt.Errorf("skip fixed opaque padding: %w", err)
		}
	}

	return data, nil
}

// WriteFixedOpaque encodes a fixed-length opaque blob (no length prefix),
// padded to a 4-byte boundary. The caller guarantees len(data) == n; a
// mismatch is a programmer error in the calling codec descriptor.
func WriteFixedOpaque(buf *bytes.Buffer, data []byte) error {
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque: %w", err)
	}
	return WriteXDRPadding(buf, uint32(len(data)))
}

// CheckArrayCap validates a variable-length array's declared count against
// its protocol maximum before any allocation proportional to count occurs.
// Callers must invoke this immediately after decoding the count word.
func CheckArrayCap(count, max uint32) error {
	if count > max {
		return fmt.Errorf("array length %d exceeds maximum %d", count, max)
	}
	return nil
}

// DecodeOptionalPresence decodes the boolean discriminant of an XDR
// optional<T> value (RFC 4506 Section 4.19, "optional-data").
func DecodeOptionalPresence(reader io.Reader) (bool, error) {
	return DecodeBool(reader)
}

// WriteOptionalPresence encodes the boolean discriminant of an optional<T>.
func WriteOptionalPresence(buf *bytes.Buffer, present bool) error {
	return WriteBool(buf, present)
}

// DecodeStringArray decodes a variable-length array of XDR strings, capped
// at max entries. The count is validated before any per-entry allocation.
func DecodeStringArray(reader io.Reader, max uint32) ([]string, error) {
	count, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read string array count: %w", err)
	}
	if err := CheckArrayCap(count, max); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	out := make([]string, count)
	for i := range out {
		s, err := DecodeString(reader)
		if err != nil {
			return nil, fmt.Errorf("read string array entry %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// WriteStringArray encodes a variable-length array of XDR strings.
func WriteStringArray(buf *bytes.Buffer, values []string) error {
	if err := WriteUint32(buf, uint32(len(values))); err != nil {
		return fmt.Errorf("write string array count: %w", err)
	}
	for i, s := range values {
		if err := WriteXDRString(buf, s); err != nil {
			return fmt.Errorf("write string array entry %d: %w", i, err)
		}
	}
	return nil
}

// DecodeUint32Array decodes a variable-length array of uint32, capped at max.
func DecodeUint32Array(reader io.Reader, max uint32) ([]uint32, error) {
	count, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read uint32 array count: %w", err)
	}
	if err := CheckArrayCap(count, max); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	out := make([]uint32, count)
	for i := range out {
		v, err := DecodeUint32(reader)
		if err != nil {
			return nil, fmt.Errorf("read uint32 array entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// WriteUint32Array encodes a variable-length array of uint32.
func WriteUint32Array(buf *bytes.Buffer, values []uint32) error {
	if err := WriteUint32(buf, uint32(len(values))); err != nil {
		return fmt.Errorf("write uint32 array count: %w", err)
	}
	for _, v := range values {
		if err := WriteUint32(buf, v); err != nil {
			return fmt.Errorf("write uint32 array entry: %w", err)
		}
	}
	return nil
}

// DecodeOpaqueArray decodes a variable-length opaque (byte slice) array,
// where max bounds the number of entries; each entry's length is bounded
// only by DecodeOpaque's general length limit.
func DecodeOpaqueArray(reader io.Reader, max uint32) ([][]byte, error) {
	count, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read opaque array count: %w", err)
	}
	if err := CheckArrayCap(count, max); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	out := make([][]byte, count)
	for i := range out {
		data, err := DecodeOpaque(reader)
		if err != nil {
			return nil, fmt.Errorf("read opaque array entry %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}
