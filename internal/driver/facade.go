// Package driver defines the narrow, synchronous interface the dispatch
// core consumes in place of a real hypervisor driver library (virConnect*,
// virDomain*, virNetwork*). The core never imports a hypervisor library
// directly; it depends only on Facade, so Facade is trivially fakeable in
// tests and swappable for a real backend in production.
package driver

import "fmt"

// OpenFlags mirrors the client-requested open flags; ReadOnly is OR-ed in by
// the session layer when the listening socket is read-only, regardless of
// what the client asked for.
type OpenFlags uint32

const (
	OpenFlagReadOnly OpenFlags = 1 << iota
	OpenFlagNoAliases
)

func (f OpenFlags) ReadOnly() bool { return f&OpenFlagReadOnly != 0 }

// NodeInfo describes the host node, returned by NodeGetInfo.
type NodeInfo struct {
	Model   string
	Memory  uint64
	Cpus    int32
	MHz     int32
	Nodes   int32
	Sockets int32
	Cores   int32
	Threads int32
}

// DomainState mirrors libvirt's coarse domain lifecycle state.
type DomainState int32

const (
	DomainStateNoState DomainState = iota
	DomainStateRunning
	DomainStateBlocked
	DomainStatePaused
	DomainStateShutdown
	DomainStateShutoff
	DomainStateCrashed
)

// DomainInfo is the result of DomainGetInfo.
type DomainInfo struct {
	State     DomainState
	MaxMemKB  uint64
	MemoryKB  uint64
	NrVirtCPU uint32
	CPUTimeNs uint64
}

// VcpuInfo is one entry of DomainGetVcpus' per-vCPU result array.
type VcpuInfo struct {
	Number  uint32
	State   int32
	CPUTime uint64
	CPU     int32
}

// BlockStats is the result of DomainBlockStats.
type BlockStats struct {
	RdReq   int64
	RdBytes int64
	WrReq   int64
	WrBytes int64
	Errs    int64
}

// InterfaceStats is the result of DomainInterfaceStats.
type InterfaceStats struct {
	RxBytes   int64
	RxPackets int64
	RxErrs    int64
	RxDrop    int64
	TxBytes   int64
	TxPackets int64
	TxErrs    int64
	TxDrop    int64
}

// SchedParamKind mirrors the wire tagged-union discriminant, kept separate
// from internal/protocol/virt so the driver facade has no dependency on the
// wire codec package.
type SchedParamKind int

const (
	SchedParamInt SchedParamKind = iota
	SchedParamUint
	SchedParamLLong
	SchedParamULLong
	SchedParamDouble
	SchedParamBoolean
)

// SchedParamValue is the driver-facing scheduler parameter value.
type SchedParamValue struct {
	Kind SchedParamKind
	I    int32
	UI   uint32
	LL   int64
	ULL  uint64
	D    float64
	B    bool
}

// SchedParam pairs a scheduler field name with its value.
type SchedParam struct {
	Field string
	Value SchedParamValue
}

// Error is the structured driver-level error record surfaced through
// LastError. The error synthesizer (internal/rpcd/wireerr) projects its
// fields directly into the wire ErrorRecord.
type Error struct {
	Code    int32
	Domain  int32
	Level   int32
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("driver error %d/%d: %s", e.Domain, e.Code, e.Message)
}

// Facade is the inward interface the dispatch core consumes. A Conn is
// returned by Open and threaded through every subsequent call on that
// session; Domain and Network are live, reference-counted handles scoped to
// a Conn.
type Facade interface {
	Open(name string, flags OpenFlags) (*Conn, error)
	Close(conn *Conn) error

	GetType(conn *Conn) (string, error)
	GetVersion(conn *Conn) (uint64, error)
	GetHostname(conn *Conn) (string, error)
	GetCapabilities(conn *Conn) (string, error)
	GetMaxVcpus(conn *Conn, typ string) (int32, error)
	NodeGetInfo(conn *Conn) (NodeInfo, error)
	LastError(conn *Conn) *Error

	DomainLookupByID(conn *Conn, id int32) (*Domain, error)
	DomainLookupByName(conn *Conn, name string) (*Domain, error)
	DomainLookupByUUID(conn *Conn, uuid [16]byte) (*Domain, error)
	ListDomains(conn *Conn, maxids int) ([]int32, error)
	NumOfDomains(conn *Conn) (int32, error)
	ListDefinedDomains(conn *Conn, maxnames int) ([]string, error)
	NumOfDefinedDomains(conn *Conn) (int32, error)

	DomainCreateLinux(conn *Conn, xmlDesc string, flags uint32) (*Domain, error)
	DomainDefineXML(conn *Conn, xmlDesc string) (*Domain, error)
	DomainUndefine(dom *Domain) error
	DomainCreate(dom *Domain) error
	DomainDestroy(dom *Domain) error
	DomainShutdown(dom *Domain) error
	DomainReboot(dom *Domain, flags uint32) error
	DomainSuspend(dom *Domain) error
	DomainResume(dom *Domain) error
	DomainSave(dom *Domain, to string) error
	DomainRestore(conn *Conn, from string) error
	DomainCoreDump(dom *Domain, to string, flags uint32) error

	DomainGetInfo(dom *Domain) (DomainInfo, error)
	DomainGetMaxMemory(dom *Domain) (uint64, error)
	DomainGetOSType(dom *Domain) (string, error)
	DomainGetAutostart(dom *Domain) (bool, error)
	DomainSetAutostart(dom *Domain, autostart bool) error
	DomainSetMaxMemory(dom *Domain, memKB uint64) error
	DomainSetMemory(dom *Domain, memKB uint64) error
	DomainSetVcpus(dom *Domain, nvcpus uint32) error
	DomainPinVcpu(dom *Domain, vcpu uint32, cpumap []byte) error
	DomainGetVcpus(dom *Domain, maxinfo, maplen int) ([]VcpuInfo, [][]byte, error)
	DomainDumpXML(dom *Domain, flags uint32) (string, error)
	DomainAttachDevice(dom *Domain, xmlDesc string) error
	DomainDetachDevice(dom *Domain, xmlDesc string) error
	DomainBlockStats(dom *Domain, path string) (BlockStats, error)
	DomainInterfaceStats(dom *Domain, device string) (InterfaceStats, error)

	DomainGetSchedulerType(dom *Domain) (string, int32, error)
	DomainGetSchedulerParameters(dom *Domain, nparams int32) ([]SchedParam, error)
	DomainSetSchedulerParameters(dom *Domain, params []SchedParam) error

	DomainMigratePrepare(conn *Conn, cookieIn []byte, uriIn string) (cookieOut []byte, uriOut string, err error)
	DomainMigratePerform(dom *Domain, cookie []byte, uri string) error
	DomainMigrateFinish(conn *Conn, dname string, cookie []byte, uri string) (*Domain, error)

	NetworkLookupByName(conn *Conn, name string) (*Network, error)
	NetworkLookupByUUID(conn *Conn, uuid [16]byte) (*Network, error)
	ListNetworks(conn *Conn, maxnames int) ([]string, error)
	NumOfNetworks(conn *Conn) (int32, error)
	ListDefinedNetworks(conn *Conn, maxnames int) ([]string, error)
	NumOfDefinedNetworks(conn *Conn) (int32, error)
	NetworkCreate(net *Network) error
	NetworkDefineXML(conn *Conn, xmlDesc string) (*Network, error)
	NetworkUndefine(net *Network) error
	NetworkDestroy(net *Network) error
	NetworkGetXMLDesc(net *Network, flags uint32) (string, error)
	NetworkGetAutostart(net *Network) (bool, error)
	NetworkSetAutostart(net *Network, autostart bool) error
	NetworkGetBridgeName(net *Network) (string, error)

	RefDomain(dom *Domain)
	UnrefDomain(dom *Domain)
	RefNetwork(net *Network)
	UnrefNetwork(net *Network)
}
