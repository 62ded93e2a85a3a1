package fs

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/objectgrid/osd"
)

const (
	tepochFileName = ".tepoch"
	mepochFileName = ".mepoch"
)

// ReadTruncateEpoch reads the 8-byte big-endian truncation epoch from dir's
// .tepoch file. Absence means the file has never been truncated; callers get
// 0 in that case, which compares less than any real epoch.
func ReadTruncateEpoch(dir string) (int64, error) {
	b, err := os.ReadFile(dir + string(os.PathSeparator) + tepochFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, osd.Error{Code: osd.FileIOError, Err: err}
	}
	if len(b) < 8 {
		return 0, osd.Error{Code: osd.ParseError, Err: errTruncatedEpochFile(tepochFileName, len(b), 8)}
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// WriteTruncateEpoch rewrites .tepoch atomically via a temp-file-then-rename,
// matching the rename-based crash-safety discipline used for object writes.
func WriteTruncateEpoch(dir string, epoch int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(epoch))
	return atomicWriteFile(dir+string(os.PathSeparator)+tepochFileName, b[:])
}

// ReadMetadataEpoch reads the 4-byte big-endian metadata epoch from dir's
// .mepoch file, defaulting to 0 when the file is absent.
func ReadMetadataEpoch(dir string) (int32, error) {
	b, err := os.ReadFile(dir + string(os.PathSeparator) + mepochFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, osd.Error{Code: osd.FileIOError, Err: err}
	}
	if len(b) < 4 {
		return 0, osd.Error{Code: osd.ParseError, Err: errTruncatedEpochFile(mepochFileName, len(b), 4)}
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// WriteMetadataEpoch rewrites .mepoch atomically.
func WriteMetadataEpoch(dir string, epoch int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(epoch))
	return atomicWriteFile(dir+string(os.PathSeparator)+mepochFileName, b[:])
}

func errTruncatedEpochFile(name string, got, want int) error {
	return osd.Error{Code: osd.ParseError, Err: fmt.Errorf("%s: short read, got %d bytes want %d", name, got, want)}
}

// atomicWriteFile writes data to a temp file in the same directory as path
// and renames it into place, the same publish-by-rename discipline
// StorageLayout uses for object writes.
func atomicWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return nil
}
