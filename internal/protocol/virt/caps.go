// Package virt defines the wire shapes, procedure catalogue, and protocol
// constants of the virtualization-management RPC dispatch core: message
// headers, domain/network descriptors, the tagged error record, and the
// scheduler-parameter union. Encoding/decoding builds on the generic
// primitives in internal/protocol/xdr.
package virt

// RemoteProgram and RemoteProtocolVersion are the fixed program identity
// enforced by the header validator on every inbound frame.
const (
	RemoteProgram         uint32 = 0x20008086
	RemoteProtocolVersion uint32 = 1
)

// UUIDLen is the fixed length of a domain/network UUID on the wire.
const UUIDLen = 16

// Per-field maxima enforced by the wire codec. Array counts are checked
// before any allocation proportional to the count. Opaque byte fields (SASL
// data, cpumaps, migration cookies) are first read by xdr.DecodeOpaque under
// its general length limit and only then checked against their own maximum.
const (
	DomainNameListMax       = 1024
	DomainIDListMax         = 16384
	NetworkNameListMax      = 256
	VcpuInfoMax             = 2048
	CPUMapMax               = 1024
	CPUMapsMax              = VcpuInfoMax * CPUMapMax
	SchedulerParametersMax  = 64
	SchedFieldNameLen       = 64
	AuthSaslDataMax         = 65536
	AuthTypeListMax         = 8
	MigrationCookieMax      = 65536
	MaxFrameLen      uint32 = 64 * 1024 * 1024
)
