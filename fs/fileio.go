package fs

import (
	"context"
	"os"

	"github.com/objectgrid/osd"
)

// FileIO wraps the raw os filesystem calls StorageLayout needs. MkdirAll and
// WriteFile retry transient failures (e.g. a momentarily overloaded local fs
// returning EINTR) via osd.Retry/osd.ShouldRetry before giving up and
// surfacing a FileIOError; the other methods make a single attempt. A single
// FileIO is shared across all open files; it holds no state of its own.
type FileIO struct{}

func NewFileIO() *FileIO { return &FileIO{} }

// classifyIOError wraps err as a FailoverQualifiedError when it indicates the
// underlying drive/filesystem itself is unhealthy (EIO, ENOSPC, an
// unexpected read-only remount, ...) rather than a transient or permission
// condition, else as a plain FileIOError.
func classifyIOError(err error) error {
	if osd.IsFailoverQualifiedIOError(err) {
		return osd.Error{Code: osd.FailoverQualifiedError, Err: err}
	}
	return osd.Error{Code: osd.FileIOError, Err: err}
}

// MkdirAll creates dir and all missing parents, retrying transient errors.
func (fio *FileIO) MkdirAll(ctx context.Context, dir string) error {
	return osd.Retry(ctx, func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			if osd.ShouldRetry(err) {
				return osd.RetryableError(err)
			}
			return osd.Error{Code: osd.FileIOError, Err: err}
		}
		return nil
	}, nil)
}

// WriteFile creates path, writes data, and optionally fsyncs before closing
// (sync selects durable/write-through mode, matching spec §4.H's writeObject
// sync parameter).
func (fio *FileIO) WriteFile(ctx context.Context, path string, data []byte, sync bool) error {
	return osd.Retry(ctx, func(ctx context.Context) error {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			if osd.ShouldRetry(err) {
				return osd.RetryableError(err)
			}
			return osd.Error{Code: osd.FileIOError, Err: err}
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			return classifyIOError(err)
		}
		if sync {
			if err := f.Sync(); err != nil {
				return classifyIOError(err)
			}
		}
		return nil
	}, nil)
}

// WriteAt opens path for read-write without truncating and writes data at
// offset, used by the in-place (non-COW) partial write path.
func (fio *FileIO) WriteAt(path string, data []byte, offset int64, sync bool) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return classifyIOError(err)
	}
	if sync {
		if err := f.Sync(); err != nil {
			return classifyIOError(err)
		}
	}
	return nil
}

// ReadAt reads up to len(buf) bytes from path starting at offset, returning
// however many bytes were actually read (which may be short at EOF).
func (fio *FileIO) ReadAt(path string, buf []byte, offset int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	n, err := f.ReadAt(buf, offset)
	if err != nil && err.Error() != "EOF" {
		return n, osd.Error{Code: osd.FileIOError, Err: err}
	}
	return n, nil
}

// SetLength truncates or grows path to length, creating it if absent. Used
// for padding objects and in-place truncate.
func (fio *FileIO) SetLength(path string, length int64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	if err := f.Truncate(length); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return nil
}

// Rename publishes newPath atomically in place of path, the crash-safety
// primitive every metadata-only version bump relies on.
func (fio *FileIO) Rename(path, newPath string) error {
	if err := os.Rename(path, newPath); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return nil
}

// Remove deletes path; a missing file is not an error (idempotent delete).
func (fio *FileIO) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return nil
}

// Size returns the current length of path.
func (fio *FileIO) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, osd.Error{Code: osd.FileIOError, Err: err}
	}
	return info.Size(), nil
}
