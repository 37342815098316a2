package handlers

import (
	"bytes"
	"testing"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/session"
)

func newTestContext(t *testing.T, facade driver.Facade) (*dispatch.HandlerContext, *driver.Conn) {
	t.Helper()
	sess := session.New(nil, false, false)
	conn, err := facade.Open("", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sess.SetDriverConn(conn)
	return &dispatch.HandlerContext{Facade: facade, Session: sess}, conn
}

func encodeArgs(t *testing.T, args dispatch.Encodable) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := args.Encode(&buf); err != nil {
		t.Fatalf("encode args: %v", err)
	}
	return &buf
}

func TestHandleOpen_ForcesReadOnlyFromSession(t *testing.T) {
	stub := driver.NewStub()
	sess := session.New(nil, true, false) // listener bound read-only
	hc := &dispatch.HandlerContext{Facade: stub, Session: sess}

	body := encodeArgs(t, virt.OpenArgs{Flags: 0})
	var w bytes.Buffer
	ret, outcome := handleOpen(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	if ret == nil {
		t.Fatal("expected non-nil ret")
	}
	if !sess.DriverConn().ReadOnly {
		t.Fatal("expected session's read-only bit to force the driver connection read-only")
	}
}

func TestHandleOpen_RejectsWhenAlreadyOpen(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)

	body := encodeArgs(t, virt.OpenArgs{Flags: 0})
	var w bytes.Buffer
	_, outcome := handleOpen(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeDispatchError {
		t.Fatalf("expected OutcomeDispatchError for a second Open, got %d", outcome)
	}
}

func TestHandleGetType_RejectsBeforeOpen(t *testing.T) {
	stub := driver.NewStub()
	sess := session.New(nil, false, false)
	hc := &dispatch.HandlerContext{Facade: stub, Session: sess}

	var w bytes.Buffer
	_, outcome := handleGetType(hc, virt.Header{}, nil, &w)
	if outcome != dispatch.OutcomeDispatchError {
		t.Fatalf("expected OutcomeDispatchError before Open, got %d", outcome)
	}
}

func TestHandleDomainLookupByName_Success(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	dom := stub.NewDomainForTest("web1", true)

	body := encodeArgs(t, virt.DomainLookupByNameArgs{Name: "web1"})
	var w bytes.Buffer
	ret, outcome := handleDomainLookupByName(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	domRet, ok := ret.(virt.DomainRet)
	if !ok {
		t.Fatalf("expected DomainRet, got %T", ret)
	}
	if domRet.Dom.Name != "web1" {
		t.Fatalf("expected name web1, got %q", domRet.Dom.Name)
	}
	if dom.RefCount() != 0 {
		t.Fatalf("expected lookup+MakeNonnullDomain to leave refcount at 0, got %d", dom.RefCount())
	}
}

func TestHandleDomainLookupByName_DriverErrorReportsOutcome(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)

	body := encodeArgs(t, virt.DomainLookupByNameArgs{Name: "missing"})
	var w bytes.Buffer
	_, outcome := handleDomainLookupByName(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeDriverError {
		t.Fatalf("expected OutcomeDriverError, got %d", outcome)
	}
}

func TestHandleDomainDestroy_ReleasesHandleExactlyOnce(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	dom := stub.NewDomainForTest("web1", true)

	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: dom.ID}
	body := encodeArgs(t, virt.DomainOnlyArgs{Dom: desc})
	var w bytes.Buffer
	_, outcome := handleDomainDestroy(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	// DomainDestroy consumes the reference acquired by the lookup inside
	// WithDomain itself; the handler suppresses WithDomain's own release
	// so the acquire/consume pair nets to zero without a double release.
	if dom.RefCount() != 0 {
		t.Fatalf("expected refcount 0 after destroy, got %d", dom.RefCount())
	}
	if dom.ID != -1 {
		t.Fatalf("expected domain id reset to -1 after destroy, got %d", dom.ID)
	}
}

func TestHandleDomainGetInfo(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	dom := stub.NewDomainForTest("web1", true)

	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: dom.ID}
	body := encodeArgs(t, virt.DomainOnlyArgs{Dom: desc})
	var w bytes.Buffer
	ret, outcome := handleDomainGetInfo(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	info, ok := ret.(virt.DomainGetInfoRet)
	if !ok {
		t.Fatalf("expected DomainGetInfoRet, got %T", ret)
	}
	if info.State != int32(driver.DomainStateRunning) {
		t.Fatalf("expected running state, got %d", info.State)
	}
	if dom.RefCount() != 0 {
		t.Fatalf("expected handle released, refcount %d", dom.RefCount())
	}
}

func TestHandleDomainGetVcpus_PacksCPUMaps(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	dom := stub.NewDomainForTest("web1", true)
	if err := stub.DomainSetVcpus(dom, 2); err != nil {
		t.Fatalf("set vcpus: %v", err)
	}

	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: dom.ID}
	body := encodeArgs(t, virt.DomainGetVcpusArgs{Dom: desc, Maxinfo: 4, Maplen: 4})
	var w bytes.Buffer
	ret, outcome := handleDomainGetVcpus(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	vcpus, ok := ret.(virt.DomainGetVcpusRet)
	if !ok {
		t.Fatalf("expected DomainGetVcpusRet, got %T", ret)
	}
	if len(vcpus.Info) != 2 {
		t.Fatalf("expected 2 vcpu entries, got %d", len(vcpus.Info))
	}
	if len(vcpus.CPUMaps) != 2*4 {
		t.Fatalf("expected packed cpumap of length 8, got %d", len(vcpus.CPUMaps))
	}
	if vcpus.CPUMaps[0] != 1 || vcpus.CPUMaps[4] != 1 {
		t.Fatalf("expected each vcpu's first cpumap byte set, got %v", vcpus.CPUMaps)
	}
}

func TestHandleDomainGetSchedulerParameters_ConvertsKind(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	dom := stub.NewDomainForTest("web1", true)

	desc := virt.DomainDesc{Name: dom.Name, UUID: dom.UUID, ID: dom.ID}
	body := encodeArgs(t, virt.DomainGetSchedulerParametersArgs{Dom: desc, Nparams: 4})
	var w bytes.Buffer
	ret, outcome := handleDomainGetSchedulerParameters(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	params, ok := ret.(virt.DomainSchedulerParametersRet)
	if !ok {
		t.Fatalf("expected DomainSchedulerParametersRet, got %T", ret)
	}
	if len(params.Params) != 1 || params.Params[0].Field != "cpu_shares" {
		t.Fatalf("unexpected params: %+v", params.Params)
	}
	if params.Params[0].Value.Kind != virt.SchedParamUint || params.Params[0].Value.UI != 1024 {
		t.Fatalf("expected wire SchedParamUint/1024, got %+v", params.Params[0].Value)
	}
}

func TestHandleDomainMigratePrepare_URIOutOnlyWhenAbsent(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)

	body := encodeArgs(t, virt.DomainMigratePrepareArgs{URIIn: nil, Flags: 0, Dname: nil, Resource: 0})
	var w bytes.Buffer
	ret, outcome := handleDomainMigratePrepare(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	prep, ok := ret.(virt.DomainMigratePrepareRet)
	if !ok {
		t.Fatalf("expected DomainMigratePrepareRet, got %T", ret)
	}
	if prep.URIOut == nil {
		t.Fatal("expected uriOut to be populated when the client supplied no uriIn")
	}

	uriIn := "qemu+tcp://dest/system"
	body2 := encodeArgs(t, virt.DomainMigratePrepareArgs{URIIn: &uriIn})
	ret2, outcome2 := handleDomainMigratePrepare(hc, virt.Header{}, body2, &w)
	if outcome2 != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome2)
	}
	prep2 := ret2.(virt.DomainMigratePrepareRet)
	if prep2.URIOut != nil {
		t.Fatal("expected uriOut to stay absent when the client supplied uriIn")
	}
}

func TestHandleNetworkLookupByName_Success(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	net := stub.NewNetworkForTest("default", true)

	body := encodeArgs(t, virt.NetworkLookupByNameArgs{Name: "default"})
	var w bytes.Buffer
	ret, outcome := handleNetworkLookupByName(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	netRet, ok := ret.(virt.NetworkRet)
	if !ok {
		t.Fatalf("expected NetworkRet, got %T", ret)
	}
	if netRet.Net.Name != "default" {
		t.Fatalf("expected name default, got %q", netRet.Net.Name)
	}
	if net.RefCount() != 0 {
		t.Fatalf("expected handle released, refcount %d", net.RefCount())
	}
}

func TestHandleNetworkSetAutostart(t *testing.T) {
	stub := driver.NewStub()
	hc, _ := newTestContext(t, stub)
	net := stub.NewNetworkForTest("default", true)

	desc := virt.NetworkDesc{Name: net.Name, UUID: net.UUID}
	body := encodeArgs(t, virt.NetworkSetAutostartArgs{Net: desc, Autostart: 1})
	var w bytes.Buffer
	_, outcome := handleNetworkSetAutostart(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	autostart, err := stub.NetworkGetAutostart(net)
	if err != nil {
		t.Fatalf("get autostart: %v", err)
	}
	if !autostart {
		t.Fatal("expected autostart to be set")
	}
}

func TestHandleAuthList_ReportsSessionAuthType(t *testing.T) {
	sess := session.New(nil, false, true)
	hc := &dispatch.HandlerContext{Session: sess}

	ret, outcome := handleAuthList(hc, virt.Header{}, bytes.NewReader(nil), &bytes.Buffer{})
	if outcome != dispatch.OutcomeSuccess {
		t.Fatalf("expected success, got outcome %d", outcome)
	}
	authRet, ok := ret.(virt.AuthListRet)
	if !ok {
		t.Fatalf("expected AuthListRet, got %T", ret)
	}
	if len(authRet.Types) != 1 || authRet.Types[0] != uint32(session.AuthSASL) {
		t.Fatalf("expected [AuthSASL], got %v", authRet.Types)
	}
}

func TestHandleAuthSaslStart_FailsWithoutNegotiation(t *testing.T) {
	sess := session.New(nil, false, true)
	hc := &dispatch.HandlerContext{Session: sess}

	body := encodeArgs(t, virt.AuthSaslStartArgs{Mechanism: "GSSAPI", HasData: true, Data: []byte("token")})
	var w bytes.Buffer
	_, outcome := handleAuthSaslStart(hc, virt.Header{}, body, &w)
	if outcome != dispatch.OutcomeDispatchError {
		t.Fatalf("expected OutcomeDispatchError, got %d", outcome)
	}
	if w.Len() == 0 {
		t.Fatal("expected the handler to have written its own error reply")
	}
}
