package virt

// Procedure numbers, one per entry in the procedure catalogue (§6). Numbers
// are stable wire values; never renumber an existing entry, only append.
const (
	ProcOpen  uint32 = 1
	ProcClose uint32 = 2

	ProcAuthList     uint32 = 3
	ProcAuthSaslInit  uint32 = 4
	ProcAuthSaslStart uint32 = 5
	ProcAuthSaslStep  uint32 = 6

	ProcSupportsFeature uint32 = 7
	ProcGetType         uint32 = 8
	ProcGetVersion      uint32 = 9
	ProcGetHostname     uint32 = 10
	ProcGetMaxVcpus     uint32 = 11
	ProcNodeGetInfo     uint32 = 12
	ProcGetCapabilities uint32 = 13

	ProcDomainLookupByID   uint32 = 14
	ProcDomainLookupByName uint32 = 15
	ProcDomainLookupByUUID uint32 = 16
	ProcNumOfDomains        uint32 = 17
	ProcListDomains         uint32 = 18
	ProcNumOfDefinedDomains uint32 = 19
	ProcListDefinedDomains  uint32 = 20

	ProcDomainCreateLinux uint32 = 21
	ProcDomainDefineXML   uint32 = 22
	ProcDomainUndefine    uint32 = 23
	ProcDomainCreate      uint32 = 24
	ProcDomainDestroy     uint32 = 25
	ProcDomainShutdown    uint32 = 26
	ProcDomainReboot      uint32 = 27
	ProcDomainSuspend     uint32 = 28
	ProcDomainResume      uint32 = 29
	ProcDomainSave        uint32 = 30
	ProcDomainRestore     uint32 = 31
	ProcDomainCoreDump    uint32 = 32

	ProcDomainGetInfo        uint32 = 33
	ProcDomainGetMaxMemory   uint32 = 34
	ProcDomainGetOsType      uint32 = 35
	ProcDomainGetAutostart   uint32 = 36
	ProcDomainSetAutostart   uint32 = 37
	ProcDomainSetMaxMemory   uint32 = 38
	ProcDomainSetMemory      uint32 = 39
	ProcDomainSetVcpus       uint32 = 40
	ProcDomainPinVcpu        uint32 = 41
	ProcDomainGetVcpus       uint32 = 42
	ProcDomainDumpXML        uint32 = 43
	ProcDomainAttachDevice   uint32 = 44
	ProcDomainDetachDevice   uint32 = 45
	ProcDomainBlockStats     uint32 = 46
	ProcDomainInterfaceStats uint32 = 47

	ProcDomainGetSchedulerType       uint32 = 48
	ProcDomainGetSchedulerParameters uint32 = 49
	ProcDomainSetSchedulerParameters uint32 = 50

	ProcDomainMigratePrepare uint32 = 51
	ProcDomainMigratePerform uint32 = 52
	ProcDomainMigrateFinish  uint32 = 53

	ProcNetworkLookupByName   uint32 = 54
	ProcNetworkLookupByUUID   uint32 = 55
	ProcNumOfNetworks         uint32 = 56
	ProcListNetworks          uint32 = 57
	ProcNumOfDefinedNetworks  uint32 = 58
	ProcListDefinedNetworks   uint32 = 59
	ProcNetworkCreate         uint32 = 60
	ProcNetworkDefineXML      uint32 = 61
	ProcNetworkUndefine       uint32 = 62
	ProcNetworkDestroy        uint32 = 63
	ProcNetworkGetXMLDesc     uint32 = 64
	ProcNetworkGetAutostart   uint32 = 65
	ProcNetworkSetAutostart   uint32 = 66
	ProcNetworkGetBridgeName  uint32 = 67
)

// ProcedureName returns a human-readable name for logging and error
// messages; used by the dispatch table and the error synthesizer.
func ProcedureName(proc uint32) string {
	if name, ok := procedureNames[proc]; ok {
		return name
	}
	return "UNKNOWN"
}

var procedureNames = map[uint32]string{
	ProcOpen:  "Open",
	ProcClose: "Close",

	ProcAuthList:      "AuthList",
	ProcAuthSaslInit:  "AuthSaslInit",
	ProcAuthSaslStart: "AuthSaslStart",
	ProcAuthSaslStep:  "AuthSaslStep",

	ProcSupportsFeature: "SupportsFeature",
	ProcGetType:         "GetType",
	ProcGetVersion:      "GetVersion",
	ProcGetHostname:     "GetHostname",
	ProcGetMaxVcpus:     "GetMaxVcpus",
	ProcNodeGetInfo:     "NodeGetInfo",
	ProcGetCapabilities: "GetCapabilities",

	ProcDomainLookupByID:    "DomainLookupByID",
	ProcDomainLookupByName:  "DomainLookupByName",
	ProcDomainLookupByUUID:  "DomainLookupByUUID",
	ProcNumOfDomains:        "NumOfDomains",
	ProcListDomains:         "ListDomains",
	ProcNumOfDefinedDomains: "NumOfDefinedDomains",
	ProcListDefinedDomains:  "ListDefinedDomains",

	ProcDomainCreateLinux: "DomainCreateLinux",
	ProcDomainDefineXML:   "DomainDefineXML",
	ProcDomainUndefine:    "DomainUndefine",
	ProcDomainCreate:      "DomainCreate",
	ProcDomainDestroy:     "DomainDestroy",
	ProcDomainShutdown:    "DomainShutdown",
	ProcDomainReboot:      "DomainReboot",
	ProcDomainSuspend:     "DomainSuspend",
	ProcDomainResume:      "DomainResume",
	ProcDomainSave:        "DomainSave",
	ProcDomainRestore:     "DomainRestore",
	ProcDomainCoreDump:    "DomainCoreDump",

	ProcDomainGetInfo:        "DomainGetInfo",
	ProcDomainGetMaxMemory:   "DomainGetMaxMemory",
	ProcDomainGetOsType:      "DomainGetOsType",
	ProcDomainGetAutostart:   "DomainGetAutostart",
	ProcDomainSetAutostart:   "DomainSetAutostart",
	ProcDomainSetMaxMemory:   "DomainSetMaxMemory",
	ProcDomainSetMemory:      "DomainSetMemory",
	ProcDomainSetVcpus:       "DomainSetVcpus",
	ProcDomainPinVcpu:        "DomainPinVcpu",
	ProcDomainGetVcpus:       "DomainGetVcpus",
	ProcDomainDumpXML:        "DomainDumpXML",
	ProcDomainAttachDevice:   "DomainAttachDevice",
	ProcDomainDetachDevice:   "DomainDetachDevice",
	ProcDomainBlockStats:     "DomainBlockStats",
	ProcDomainInterfaceStats: "DomainInterfaceStats",

	ProcDomainGetSchedulerType:       "DomainGetSchedulerType",
	ProcDomainGetSchedulerParameters: "DomainGetSchedulerParameters",
	ProcDomainSetSchedulerParameters: "DomainSetSchedulerParameters",

	ProcDomainMigratePrepare: "DomainMigratePrepare",
	ProcDomainMigratePerform: "DomainMigratePerform",
	ProcDomainMigrateFinish:  "DomainMigrateFinish",

	ProcNetworkLookupByName:  "NetworkLookupByName",
	ProcNetworkLookupByUUID:  "NetworkLookupByUUID",
	ProcNumOfNetworks:        "NumOfNetworks",
	ProcListNetworks:         "ListNetworks",
	ProcNumOfDefinedNetworks: "NumOfDefinedNetworks",
	ProcListDefinedNetworks:  "ListDefinedNetworks",
	ProcNetworkCreate:        "NetworkCreate",
	ProcNetworkDefineXML:     "NetworkDefineXML",
	ProcNetworkUndefine:      "NetworkUndefine",
	ProcNetworkDestroy:       "NetworkDestroy",
	ProcNetworkGetXMLDesc:    "NetworkGetXMLDesc",
	ProcNetworkGetAutostart:  "NetworkGetAutostart",
	ProcNetworkSetAutostart:  "NetworkSetAutostart",
	ProcNetworkGetBridgeName: "NetworkGetBridgeName",
}

// AuthType enumerates the authentication mechanisms the core can require of
// a session before admitting general procedures.
type AuthType uint32

const (
	AuthNone AuthType = 0
	AuthSASL AuthType = 1
)

// authProcedureSet is the set of procedures admissible while a session has
// not yet completed authentication (the "pre-auth set").
var authProcedureSet = map[uint32]bool{
	ProcAuthList:      true,
	ProcAuthSaslInit:  true,
	ProcAuthSaslStart: true,
	ProcAuthSaslStep:  true,
}

// IsAuthProcedure reports whether proc is in the pre-auth set.
func IsAuthProcedure(proc uint32) bool {
	return authProcedureSet[proc]
}
