package virt

import (
	"bytes"
	"io"

	"github.com/go-virt/virtd/internal/protocol/xdr"
)

// DomainMigratePrepareArgs is issued on the destination host.
type DomainMigratePrepareArgs struct {
	URIIn    *string
	Flags    uint64
	Dname    *string
	Resource uint64
}

func DecodeDomainMigratePrepareArgs(r io.Reader) (DomainMigratePrepareArgs, error) {
	var a DomainMigratePrepareArgs
	var err error
	if a.URIIn, err = decodeOptionalString(r); err != nil {
		return a, err
	}
	if a.Flags, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Dname, err = decodeOptionalString(r); err != nil {
		return a, err
	}
	a.Resource, err = xdr.DecodeUint64(r)
	return a, err
}
func (a DomainMigratePrepareArgs) Encode(buf *bytes.Buffer) error {
	if err := encodeOptionalString(buf, a.URIIn); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Flags); err != nil {
		return err
	}
	if err := encodeOptionalString(buf, a.Dname); err != nil {
		return err
	}
	return xdr.WriteUint64(buf, a.Resource)
}

// DomainMigratePrepareRet carries the destination-assigned cookie and,
// optionally, the URI the source should actually connect to (uriOut is
// present only when the caller did not supply uriIn).
type DomainMigratePrepareRet struct {
	Cookie []byte
	URIOut *string
}

func DecodeDomainMigratePrepareRet(r io.Reader) (DomainMigratePrepareRet, error) {
	var ret DomainMigratePrepareRet
	cookie, err := xdr.DecodeOpaque(r)
	if err != nil {
		return ret, err
	}
	if err := xdr.CheckArrayCap(uint32(len(cookie)), MigrationCookieMax); err != nil {
		return ret, err
	}
	ret.Cookie = cookie
	ret.URIOut, err = decodeOptionalString(r)
	return ret, err
}
func (ret DomainMigratePrepareRet) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDROpaque(buf, ret.Cookie); err != nil {
		return err
	}
	return encodeOptionalString(buf, ret.URIOut)
}

// DomainMigratePerformArgs is issued on the source host, consuming the
// cookie produced by MigratePrepare on the destination.
type DomainMigratePerformArgs struct {
	Dom      DomainDesc
	Cookie   []byte
	URI      string
	Flags    uint64
	Dname    *string
	Resource uint64
}

func DecodeDomainMigratePerformArgs(r io.Reader) (DomainMigratePerformArgs, error) {
	var a DomainMigratePerformArgs
	var err error
	if a.Dom, err = DecodeDomainDesc(r); err != nil {
		return a, err
	}
	cookie, err := xdr.DecodeOpaque(r)
	if err != nil {
		return a, err
	}
	if err := xdr.CheckArrayCap(uint32(len(cookie)), MigrationCookieMax); err != nil {
		return a, err
	}
	a.Cookie = cookie
	if a.URI, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	if a.Flags, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Dname, err = decodeOptionalString(r); err != nil {
		return a, err
	}
	a.Resource, err = xdr.DecodeUint64(r)
	return a, err
}
func (a DomainMigratePerformArgs) Encode(buf *bytes.Buffer) error {
	if err := a.Dom.Encode(buf); err != nil {
		return err
	}
	if err := xdr.WriteXDROpaque(buf, a.Cookie); err != nil {
		return err
	}
	if err := xdr.WriteXDRString(buf, a.URI); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Flags); err != nil {
		return err
	}
	if err := encodeOptionalString(buf, a.Dname); err != nil {
		return err
	}
	return xdr.WriteUint64(buf, a.Resource)
}

// DomainMigrateFinishArgs is issued on the destination host to complete
// the migration and obtain the remote domain handle.
type DomainMigrateFinishArgs struct {
	Dname string
	Cookie []byte
	URI    string
	Flags  uint64
}

func DecodeDomainMigrateFinishArgs(r io.Reader) (DomainMigrateFinishArgs, error) {
	var a DomainMigrateFinishArgs
	var err error
	if a.Dname, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	cookie, err := xdr.DecodeOpaque(r)
	if err != nil {
		return a, err
	}
	if err := xdr.CheckArrayCap(uint32(len(cookie)), MigrationCookieMax); err != nil {
		return a, err
	}
	a.Cookie = cookie
	if a.URI, err = xdr.DecodeString(r); err != nil {
		return a, err
	}
	a.Flags, err = xdr.DecodeUint64(r)
	return a, err
}
func (a DomainMigrateFinishArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDRString(buf, a.Dname); err != nil {
		return err
	}
	if err := xdr.WriteXDROpaque(buf, a.Cookie); err != nil {
		return err
	}
	if err := xdr.WriteXDRString(buf, a.URI); err != nil {
		return err
	}
	return xdr.WriteUint64(buf, a.Flags)
}
