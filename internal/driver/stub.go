package driver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Stub is a deterministic, in-memory Facade implementation. It stands in
// for the real hypervisor driver library in tests and in the absence of a
// configured real backend: every Domain/Network it hands out is a plain
// struct tracked in maps under a single mutex, with no actual virtualization
// behind it.
type Stub struct {
	mu sync.Mutex

	hostname      string
	nodeInfo      NodeInfo
	uuidNamespace uuid.UUID

	nextID int32

	domainsByName map[string]*Domain
	domainsByUUID map[[16]byte]*Domain
	domainsByID   map[int32]*Domain

	networksByName map[string]*Network
	networksByUUID map[[16]byte]*Network

	lastErr *Error
}

// NewStub builds an empty stub driver with a fixed synthetic node identity.
func NewStub() *Stub {
	return NewStubWithOptions(StubOptions{})
}

// StubOptions configures the synthetic node identity a Stub reports, and
// the namespace it derives deterministic domain/network UUIDs from. Zero
// values fall back to NewStub's fixed defaults.
type StubOptions struct {
	Hostname      string
	NodeMemoryKB  uint64
	UUIDNamespace uuid.UUID
}

// NewStubWithOptions builds a stub driver whose node identity and UUID
// derivation are configurable, for wiring to on-disk driver configuration
// rather than the fixed defaults NewStub uses for tests.
func NewStubWithOptions(opts StubOptions) *Stub {
	hostname := opts.Hostname
	if hostname == "" {
		hostname = "virtd-stub"
	}
	memKB := opts.NodeMemoryKB
	if memKB == 0 {
		memKB = 16 * 1024 * 1024
	}
	return &Stub{
		hostname: hostname,
		nodeInfo: NodeInfo{
			Model:   "x86_64",
			Memory:  memKB,
			Cpus:    8,
			MHz:     2400,
			Nodes:   1,
			Sockets: 1,
			Cores:   8,
			Threads: 1,
		},
		uuidNamespace:  opts.UUIDNamespace,
		domainsByName:  make(map[string]*Domain),
		domainsByUUID:  make(map[[16]byte]*Domain),
		domainsByID:    make(map[int32]*Domain),
		networksByName: make(map[string]*Network),
		networksByUUID: make(map[[16]byte]*Network),
	}
}

func (s *Stub) fail(code int32, format string, args ...any) error {
	err := &Error{Code: code, Domain: ErrDomainDriver, Level: ErrLevelError, Message: fmt.Sprintf(format, args...)}
	s.lastErr = err
	return err
}

// Open creates a new connection. The stub never rejects an Open; name is
// recorded for diagnostics only.
func (s *Stub) Open(name string, flags OpenFlags) (*Conn, error) {
	return &Conn{Name: name, ReadOnly: flags.ReadOnly()}, nil
}

// Close is a no-op for the stub: there is no underlying resource to release
// beyond what the handle bridge already tracks via refcounts.
func (s *Stub) Close(conn *Conn) error {
	return nil
}

func (s *Stub) GetType(conn *Conn) (string, error)      { return "STUB", nil }
func (s *Stub) GetVersion(conn *Conn) (uint64, error)   { return 1_000_000, nil }
func (s *Stub) GetHostname(conn *Conn) (string, error)  { return s.hostname, nil }
func (s *Stub) GetCapabilities(conn *Conn) (string, error) {
	return "<capabilities><host><cpu><arch>x86_64</arch></cpu></host></capabilities>", nil
}
func (s *Stub) GetMaxVcpus(conn *Conn, typ string) (int32, error) { return 256, nil }

func (s *Stub) NodeGetInfo(conn *Conn) (NodeInfo, error) {
	return s.nodeInfo, nil
}

// LastError returns the most recently recorded failure on conn if it
// carries one, otherwise the stub's process-global last error.
func (s *Stub) LastError(conn *Conn) *Error {
	if conn != nil {
		if err := conn.LastError(); err != nil {
			return err
		}
	}
	return s.lastErr
}

func (s *Stub) DomainLookupByID(conn *Conn, id int32) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domainsByID[id]
	if !ok {
		return nil, s.fail(ErrCodeNoDomain, "no domain with matching id %d", id)
	}
	d.refCount.Add(1)
	return d, nil
}

func (s *Stub) DomainLookupByName(conn *Conn, name string) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domainsByName[name]
	if !ok {
		return nil, s.fail(ErrCodeNoDomain, "no domain with matching name '%s'", name)
	}
	d.refCount.Add(1)
	return d, nil
}

func (s *Stub) DomainLookupByUUID(conn *Conn, uuidBytes [16]byte) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domainsByUUID[uuidBytes]
	if !ok {
		return nil, s.fail(ErrCodeNoDomain, "no domain with matching uuid")
	}
	d.refCount.Add(1)
	return d, nil
}

func (s *Stub) ListDomains(conn *Conn, maxids int) ([]int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int32, 0, len(s.domainsByID))
	for id := range s.domainsByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > maxids {
		ids = ids[:maxids]
	}
	return ids, nil
}

func (s *Stub) NumOfDomains(conn *Conn) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int32(len(s.domainsByID)), nil
}

func (s *Stub) ListDefinedDomains(conn *Conn, maxnames int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.domainsByName))
	for name, d := range s.domainsByName {
		if !d.persistent.Load() || d.state.Load() != int32(DomainStateShutoff) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxnames {
		names = names[:maxnames]
	}
	return names, nil
}

func (s *Stub) NumOfDefinedDomains(conn *Conn) (int32, error) {
	names, err := s.ListDefinedDomains(conn, len(s.domainsByName)+1)
	if err != nil {
		return 0, err
	}
	return int32(len(names)), nil
}

func (s *Stub) newDomain(name string) *Domain {
	if name == "" {
		name = "domain-" + uuid.NewString()[:8]
	}
	d := &Domain{Name: name, UUID: s.deriveUUID("domain", name)}
	d.state.Store(int32(DomainStateShutoff))
	d.refCount.Store(1)
	return d
}

// deriveUUID returns a namespace-derived, deterministic UUID when a
// namespace is configured (so two stub instances fed the same driver
// config hand out identical UUIDs for the same name), otherwise a random
// one, matching NewStub's original behavior.
func (s *Stub) deriveUUID(kind, name string) uuid.UUID {
	if s.uuidNamespace == uuid.Nil {
		return uuid.New()
	}
	return uuid.NewSHA1(s.uuidNamespace, []byte(kind+":"+name))
}

func (s *Stub) registerDomain(d *Domain) {
	s.domainsByName[d.Name] = d
	s.domainsByUUID[d.UUID] = d
}

func (s *Stub) DomainCreateLinux(conn *Conn, xmlDesc string, flags uint32) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.newDomain("")
	d.xmlDesc.Store(&xmlDesc)
	d.persistent.Store(false)
	s.nextID++
	d.ID = s.nextID
	d.state.Store(int32(DomainStateRunning))
	s.registerDomain(d)
	s.domainsByID[d.ID] = d
	return d, nil
}

func (s *Stub) DomainDefineXML(conn *Conn, xmlDesc string) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.newDomain("")
	d.xmlDesc.Store(&xmlDesc)
	d.persistent.Store(true)
	d.ID = -1
	s.registerDomain(d)
	return d, nil
}

func (s *Stub) DomainUndefine(dom *Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dom.persistent.Store(false)
	if dom.state.Load() == int32(DomainStateShutoff) {
		delete(s.domainsByName, dom.Name)
		delete(s.domainsByUUID, dom.UUID)
	}
	return nil
}

func (s *Stub) DomainCreate(dom *Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dom.state.Load() != int32(DomainStateShutoff) {
		return s.fail(ErrCodeOperationInvalid, "domain '%s' is already active", dom.Name)
	}
	s.nextID++
	dom.ID = s.nextID
	s.domainsByID[dom.ID] = dom
	dom.state.Store(int32(DomainStateRunning))
	return nil
}

// DomainDestroy consumes the handle: the caller (handler) must not release
// it again after this returns, since the driver has taken ownership of the
// reference it represented.
func (s *Stub) DomainDestroy(dom *Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.domainsByID, dom.ID)
	dom.ID = -1
	dom.state.Store(int32(DomainStateShutoff))
	if !dom.persistent.Load() {
		delete(s.domainsByName, dom.Name)
		delete(s.domainsByUUID, dom.UUID)
	}
	dom.refCount.Add(-1)
	return nil
}

func (s *Stub) DomainShutdown(dom *Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dom.state.Store(int32(DomainStateShutdown))
	return nil
}

func (s *Stub) DomainReboot(dom *Domain, flags uint32) error { return nil }

func (s *Stub) DomainSuspend(dom *Domain) error {
	dom.state.Store(int32(DomainStatePaused))
	return nil
}

func (s *Stub) DomainResume(dom *Domain) error {
	dom.state.Store(int32(DomainStateRunning))
	return nil
}

func (s *Stub) DomainSave(dom *Domain, to string) error {
	dom.state.Store(int32(DomainStateShutoff))
	return nil
}

func (s *Stub) DomainRestore(conn *Conn, from string) error {
	return nil
}

func (s *Stub) DomainCoreDump(dom *Domain, to string, flags uint32) error {
	return nil
}

func (s *Stub) DomainGetInfo(dom *Domain) (DomainInfo, error) {
	return DomainInfo{
		State:     DomainState(dom.state.Load()),
		MaxMemKB:  dom.maxMemKB.Load(),
		MemoryKB:  dom.memoryKB.Load(),
		NrVirtCPU: dom.nrVirtCPU.Load(),
		CPUTimeNs: 0,
	}, nil
}

func (s *Stub) DomainGetMaxMemory(dom *Domain) (uint64, error) {
	return dom.maxMemKB.Load(), nil
}

func (s *Stub) DomainGetOSType(dom *Domain) (string, error) { return "hvm", nil }

func (s *Stub) DomainGetAutostart(dom *Domain) (bool, error) {
	return dom.autostart.Load(), nil
}

func (s *Stub) DomainSetAutostart(dom *Domain, autostart bool) error {
	dom.autostart.Store(autostart)
	return nil
}

func (s *Stub) DomainSetMaxMemory(dom *Domain, memKB uint64) error {
	dom.maxMemKB.Store(memKB)
	return nil
}

func (s *Stub) DomainSetMemory(dom *Domain, memKB uint64) error {
	if memKB > dom.maxMemKB.Load() && dom.maxMemKB.Load() != 0 {
		return s.fail(ErrCodeOperationInvalid, "requested memory %d exceeds max memory %d", memKB, dom.maxMemKB.Load())
	}
	dom.memoryKB.Store(memKB)
	return nil
}

func (s *Stub) DomainSetVcpus(dom *Domain, nvcpus uint32) error {
	dom.nrVirtCPU.Store(nvcpus)
	return nil
}

func (s *Stub) DomainPinVcpu(dom *Domain, vcpu uint32, cpumap []byte) error {
	return nil
}

func (s *Stub) DomainGetVcpus(dom *Domain, maxinfo, maplen int) ([]VcpuInfo, [][]byte, error) {
	n := int(dom.nrVirtCPU.Load())
	if n > maxinfo {
		n = maxinfo
	}
	infos := make([]VcpuInfo, n)
	maps := make([][]byte, n)
	for i := 0; i < n; i++ {
		infos[i] = VcpuInfo{Number: uint32(i), State: int32(DomainStateRunning), CPU: int32(i)}
		maps[i] = make([]byte, maplen)
		if maplen > 0 {
			maps[i][0] = 1
		}
	}
	return infos, maps, nil
}

func (s *Stub) DomainDumpXML(dom *Domain, flags uint32) (string, error) {
	if p := dom.xmlDesc.Load(); p != nil {
		return *p, nil
	}
	return fmt.Sprintf("<domain><name>%s</name></domain>", dom.Name), nil
}

func (s *Stub) DomainAttachDevice(dom *Domain, xmlDesc string) error { return nil }
func (s *Stub) DomainDetachDevice(dom *Domain, xmlDesc string) error { return nil }

func (s *Stub) DomainBlockStats(dom *Domain, path string) (BlockStats, error) {
	return BlockStats{}, nil
}

func (s *Stub) DomainInterfaceStats(dom *Domain, device string) (InterfaceStats, error) {
	return InterfaceStats{}, nil
}

func (s *Stub) DomainGetSchedulerType(dom *Domain) (string, int32, error) {
	return "posix", 1, nil
}

func (s *Stub) DomainGetSchedulerParameters(dom *Domain, nparams int32) ([]SchedParam, error) {
	params := []SchedParam{
		{Field: "cpu_shares", Value: SchedParamValue{Kind: SchedParamUint, UI: 1024}},
	}
	if int32(len(params)) > nparams {
		params = params[:nparams]
	}
	return params, nil
}

func (s *Stub) DomainSetSchedulerParameters(dom *Domain, params []SchedParam) error {
	return nil
}

func (s *Stub) DomainMigratePrepare(conn *Conn, cookieIn []byte, uriIn string) ([]byte, string, error) {
	return cookieIn, uriIn, nil
}

func (s *Stub) DomainMigratePerform(dom *Domain, cookie []byte, uri string) error {
	return nil
}

func (s *Stub) DomainMigrateFinish(conn *Conn, dname string, cookie []byte, uri string) (*Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domainsByName[dname]
	if !ok {
		return nil, s.fail(ErrCodeNoDomain, "no domain with matching name '%s'", dname)
	}
	d.refCount.Add(1)
	return d, nil
}

func (s *Stub) newNetwork(name string) *Network {
	if name == "" {
		name = "network-" + uuid.NewString()[:8]
	}
	n := &Network{Name: name, UUID: s.deriveUUID("network", name)}
	n.refCount.Store(1)
	return n
}

func (s *Stub) NetworkLookupByName(conn *Conn, name string) (*Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.networksByName[name]
	if !ok {
		return nil, s.fail(ErrCodeNoNetwork, "no network with matching name '%s'", name)
	}
	n.refCount.Add(1)
	return n, nil
}

func (s *Stub) NetworkLookupByUUID(conn *Conn, uuidBytes [16]byte) (*Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.networksByUUID[uuidBytes]
	if !ok {
		return nil, s.fail(ErrCodeNoNetwork, "no network with matching uuid")
	}
	n.refCount.Add(1)
	return n, nil
}

func (s *Stub) ListNetworks(conn *Conn, maxnames int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.networksByName))
	for name, n := range s.networksByName {
		if n.active.Load() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > maxnames {
		names = names[:maxnames]
	}
	return names, nil
}

func (s *Stub) NumOfNetworks(conn *Conn) (int32, error) {
	names, err := s.ListNetworks(conn, len(s.networksByName)+1)
	if err != nil {
		return 0, err
	}
	return int32(len(names)), nil
}

func (s *Stub) ListDefinedNetworks(conn *Conn, maxnames int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.networksByName))
	for name, n := range s.networksByName {
		if !n.active.Load() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > maxnames {
		names = names[:maxnames]
	}
	return names, nil
}

func (s *Stub) NumOfDefinedNetworks(conn *Conn) (int32, error) {
	names, err := s.ListDefinedNetworks(conn, len(s.networksByName)+1)
	if err != nil {
		return 0, err
	}
	return int32(len(names)), nil
}

func (s *Stub) NetworkCreate(net *Network) error {
	net.active.Store(true)
	return nil
}

func (s *Stub) NetworkDefineXML(conn *Conn, xmlDesc string) (*Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.newNetwork("")
	n.xmlDesc.Store(&xmlDesc)
	s.networksByName[n.Name] = n
	s.networksByUUID[n.UUID] = n
	return n, nil
}

func (s *Stub) NetworkUndefine(net *Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !net.active.Load() {
		delete(s.networksByName, net.Name)
		delete(s.networksByUUID, net.UUID)
	}
	return nil
}

func (s *Stub) NetworkDestroy(net *Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	net.active.Store(false)
	delete(s.networksByName, net.Name)
	delete(s.networksByUUID, net.UUID)
	return nil
}

func (s *Stub) NetworkGetXMLDesc(net *Network, flags uint32) (string, error) {
	if p := net.xmlDesc.Load(); p != nil {
		return *p, nil
	}
	return fmt.Sprintf("<network><name>%s</name></network>", net.Name), nil
}

func (s *Stub) NetworkGetAutostart(net *Network) (bool, error) {
	return net.autostart.Load(), nil
}

func (s *Stub) NetworkSetAutostart(net *Network, autostart bool) error {
	net.autostart.Store(autostart)
	return nil
}

func (s *Stub) NetworkGetBridgeName(net *Network) (string, error) {
	return "virbr-" + net.Name, nil
}

func (s *Stub) RefDomain(dom *Domain) {
	if dom != nil {
		dom.refCount.Add(1)
	}
}

func (s *Stub) UnrefDomain(dom *Domain) {
	if dom != nil {
		dom.refCount.Add(-1)
	}
}

func (s *Stub) RefNetwork(net *Network) {
	if net != nil {
		net.refCount.Add(1)
	}
}

func (s *Stub) UnrefNetwork(net *Network) {
	if net != nil {
		net.refCount.Add(-1)
	}
}

// RefCount exposes a domain's current reference count, used by tests to
// assert the "refcount returns to pre-call value on every exit path"
// invariant.
func (d *Domain) RefCount() int32 { return d.refCount.Load() }

// RefCount exposes a network's current reference count for the same
// purpose.
func (n *Network) RefCount() int32 { return n.refCount.Load() }

// NewDomainForTest registers a pre-built domain directly into the stub,
// bypassing CreateLinux/DefineXML, for test setup convenience.
func (s *Stub) NewDomainForTest(name string, running bool) *Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.newDomain(name)
	d.persistent.Store(true)
	d.refCount.Store(0)
	d.ID = -1
	if running {
		s.nextID++
		d.ID = s.nextID
		d.state.Store(int32(DomainStateRunning))
		s.domainsByID[d.ID] = d
	}
	s.registerDomain(d)
	return d
}

// NewNetworkForTest registers a pre-built network directly into the stub.
func (s *Stub) NewNetworkForTest(name string, active bool) *Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.newNetwork(name)
	n.refCount.Store(0)
	n.active.Store(active)
	s.networksByName[n.Name] = n
	s.networksByUUID[n.UUID] = n
	return n
}

var _ Facade = (*Stub)(nil)
