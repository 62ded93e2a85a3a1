package fs

import (
	"fmt"
	"strconv"

	"github.com/objectgrid/osd"
)

// Three historical on-disk filename lengths, all of which must still parse.
const (
	formatLen32 = 32 // objNo(16) objVersion(8) checksum(8), ts implied -1
	formatLen48 = 48 // objNo(16) objVersion(16) checksum(16), ts implied -1
	formatLen64 = 64 // objNo(16) objVersion(16) checksum(16) cowTimestamp(16)
)

// EncodeObjectName renders info as the current (48- or 64-char) on-disk
// object filename: the 48-char form is always emitted, with the timestamp
// field appended (producing the 64-char form) whenever Timestamp != -1.
func EncodeObjectName(info osd.ObjectVersionInfo) string {
	s := fmt.Sprintf("%016x%016x%016x", uint64(info.ObjectNumber), uint64(info.Version), uint64(info.Checksum))
	if info.Timestamp != osd.NoCowTimestamp {
		s += fmt.Sprintf("%016x", uint64(info.Timestamp))
	}
	return s
}

// ParseObjectName decodes an on-disk object filename in any of the three
// supported historical formats. It returns an osd.Error{Code: osd.ParseError}
// when name matches none of them.
func ParseObjectName(name string) (osd.ObjectVersionInfo, error) {
	switch len(name) {
	case formatLen32:
		n, err := parseHexField(name, 0, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		v, err := parseHexField(name, 16, 8)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		c, err := parseHexField(name, 24, 8)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		return osd.ObjectVersionInfo{
			ObjectNumber: osd.ObjectNumber(n),
			Version:      osd.ObjectVersion(v),
			Checksum:     osd.Checksum(c),
			Timestamp:    osd.NoCowTimestamp,
		}, nil
	case formatLen48:
		n, err := parseHexField(name, 0, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		v, err := parseHexField(name, 16, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		c, err := parseHexField(name, 32, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		return osd.ObjectVersionInfo{
			ObjectNumber: osd.ObjectNumber(n),
			Version:      osd.ObjectVersion(v),
			Checksum:     osd.Checksum(c),
			Timestamp:    osd.NoCowTimestamp,
		}, nil
	case formatLen64:
		n, err := parseHexField(name, 0, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		v, err := parseHexField(name, 16, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		c, err := parseHexField(name, 32, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		ts, err := parseHexField(name, 48, 16)
		if err != nil {
			return osd.ObjectVersionInfo{}, parseErr(name, err)
		}
		return osd.ObjectVersionInfo{
			ObjectNumber: osd.ObjectNumber(n),
			Version:      osd.ObjectVersion(v),
			Checksum:     osd.Checksum(c),
			Timestamp:    osd.Timestamp(ts),
		}, nil
	default:
		return osd.ObjectVersionInfo{}, parseErr(name, fmt.Errorf("unsupported object filename length %d", len(name)))
	}
}

func parseHexField(name string, offset, width int) (uint64, error) {
	field := name[offset : offset+width]
	return strconv.ParseUint(field, 16, 64)
}

func parseErr(name string, err error) error {
	return osd.Error{Code: osd.ParseError, Err: fmt.Errorf("illegal object filename %q: %w", name, err)}
}
