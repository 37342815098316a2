package driver

// Error codes and classification constants used by Facade implementations
// when populating Error. These are driver-local (not the wire protocol's
// virt.ErrCode* constants) so the driver package carries no dependency on
// the wire codec; the error synthesizer maps between the two.
const (
	ErrCodeNoDomain         int32 = 5
	ErrCodeNoNetwork        int32 = 6
	ErrCodeOperationInvalid int32 = 7

	ErrDomainDriver int32 = 2

	ErrLevelError int32 = 2
)
