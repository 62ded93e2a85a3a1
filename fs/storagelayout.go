package fs

import (
	"context"
	log "log/slog"
	"path/filepath"

	"github.com/objectgrid/osd"
)

// StorageLayout is the object-storage engine composing PathHasher,
// ObjectNameCodec, ChecksumEngine, VersionManager and FileIO into
// read/write/truncate/delete/padding/enumerate operations (spec component
// H). A single StorageLayout is shared across all open files; per-file state
// lives in the FileHandle the caller passes to every method.
//
// Every method assumes the single-threaded-per-file execution model: no
// internal locking is performed, and callers must serialize operations
// against the same FileHandle themselves.
type StorageLayout struct {
	root      string
	hasher    *PathHasher
	checksums *ChecksumEngine
	fileIO    *FileIO
	directIO  bool
}

// NewStorageLayout builds a StorageLayout rooted at root, using hasher for
// directory fan-out and checksums for payload integrity. When directIO is
// true, whole-stripe reads (offset=0, length=-1) are attempted via aligned
// O_DIRECT I/O before falling back to the regular buffered path.
func NewStorageLayout(root string, hasher *PathHasher, checksums *ChecksumEngine, directIO bool) *StorageLayout {
	return &StorageLayout{root: root, hasher: hasher, checksums: checksums, fileIO: NewFileIO(), directIO: directIO}
}

// OpenFile resolves fileId to its FileHandle, reconstructing VersionManager
// and file metadata from the directory on disk (spec component I).
func (s *StorageLayout) OpenFile(fileId osd.FileId, policy osd.StripingPolicy, cowEnabled bool) (*FileHandle, error) {
	return LoadFileMetadata(s.root, s.hasher, fileId, policy, cowEnabled)
}

// ReadObject reads object objNo at the given version (spec §4.H
// readObject). length == -1 means "entire stripe" and requires offset == 0.
// requestedVersion.Version == 0 asks for "does not exist" unconditionally.
func (s *StorageLayout) ReadObject(h *FileHandle, objNo osd.ObjectNumber, offset, length int64, requestedVersion osd.ObjectVersionInfo) (osd.ObjectInformation, error) {
	stripeSize := h.Metadata.StripingPolicy.StripeSizeForObject(objNo)

	if requestedVersion.Version == 0 {
		return osd.ObjectInformation{State: osd.DoesNotExist, StripeSize: stripeSize}, nil
	}

	info, err := h.Metadata.Versions.GetObjectVersionInfo(objNo, requestedVersion.Version, requestedVersion.Timestamp)
	if err != nil {
		return osd.ObjectInformation{State: osd.DoesNotExist, StripeSize: stripeSize}, nil
	}

	path := filepath.Join(h.Dir, EncodeObjectName(info))
	fileLen, err := s.fileIO.Size(path)
	if err != nil {
		return osd.ObjectInformation{State: osd.DoesNotExist, StripeSize: stripeSize}, nil
	}
	if fileLen == 0 {
		return osd.ObjectInformation{State: osd.PaddingObject, StripeSize: stripeSize}, nil
	}
	if offset >= fileLen {
		return osd.ObjectInformation{State: osd.Exists, Data: []byte{}, StripeSize: stripeSize}, nil
	}

	readLen := length
	if readLen == -1 {
		readLen = fileLen
	}
	if remaining := fileLen - offset; readLen > remaining {
		readLen = remaining
	}
	lastOffset := offset + readLen
	if lastOffset > stripeSize {
		panic("readObject: lastOffset exceeds stripe size")
	}

	if s.directIO && offset == 0 && length == -1 {
		if data, err := ReadWholeStripeDirect(path, readLen); err == nil {
			return osd.ObjectInformation{State: osd.Exists, Data: data, StripeSize: stripeSize}, nil
		}
		log.Warn("direct I/O read failed, falling back to buffered read", "path", path)
	}

	buf := make([]byte, readLen)
	n, err := s.fileIO.ReadAt(path, buf, offset)
	if err != nil {
		return osd.ObjectInformation{}, err
	}
	return osd.ObjectInformation{State: osd.Exists, Data: buf[:n], StripeSize: stripeSize}, nil
}

// WriteObject writes data to object objNo at offset under newVersion/
// newTimestamp, selecting completeWrite / partialWriteCOW / partialWriteNoCOW
// per spec §4.H writeObject.
func (s *StorageLayout) WriteObject(ctx context.Context, h *FileHandle, data []byte, objNo osd.ObjectNumber, offset int64, newVersion osd.ObjectVersion, newTimestamp osd.Timestamp, sync bool) error {
	if newVersion == 0 {
		panic("writeObject: newVersion must be > 0")
	}
	if len(data) == 0 {
		return nil
	}

	stripeSize := h.Metadata.StripingPolicy.StripeSizeForObject(objNo)
	isRangeWrite := offset > 0 || int64(len(data)) < stripeSize

	if err := s.fileIO.MkdirAll(ctx, h.Dir); err != nil {
		return err
	}

	if isRangeWrite {
		if h.Cow.IsCOW(objNo) || s.checksums.Enabled() {
			return s.partialWriteCOW(h, data, objNo, offset, newVersion, newTimestamp, sync, stripeSize)
		}
		return s.partialWriteNoCOW(h, data, objNo, offset, newVersion, newTimestamp, sync)
	}
	return s.completeWrite(h, data, objNo, newVersion, newTimestamp, sync)
}

// unwrapObjectData reads the full current payload of objNo's predecessor
// (info), zero-padded out to stripeSize, so a partial write can be spliced
// into a complete in-memory stripe before being re-written as a new file.
func (s *StorageLayout) unwrapObjectData(h *FileHandle, info osd.ObjectVersionInfo, stripeSize int64) ([]byte, error) {
	buf := make([]byte, stripeSize)
	if !info.Exists() {
		return buf, nil
	}
	path := filepath.Join(h.Dir, EncodeObjectName(info))
	fileLen, err := s.fileIO.Size(path)
	if err != nil {
		return buf, nil
	}
	if fileLen == 0 {
		return buf, nil
	}
	readLen := fileLen
	if readLen > stripeSize {
		readLen = stripeSize
	}
	n, err := s.fileIO.ReadAt(path, buf[:readLen], 0)
	if err != nil {
		return nil, err
	}
	_ = n
	return buf, nil
}

func (s *StorageLayout) partialWriteCOW(h *FileHandle, data []byte, objNo osd.ObjectNumber, offset int64, newVersion osd.ObjectVersion, newTimestamp osd.Timestamp, sync bool, stripeSize int64) error {
	predecessor, err := h.Metadata.Versions.GetLatestObjectVersionBefore(objNo, osd.NoCowTimestamp, h.Metadata.LastObjectNumber+1)
	if err != nil && err != osd.ErrNotFound {
		return err
	}

	merged, err := s.unwrapObjectData(h, predecessor, stripeSize)
	if err != nil {
		return err
	}
	copy(merged[offset:offset+int64(len(data))], data)

	checksum := osd.Checksum(0)
	if s.checksums.Enabled() {
		checksum = s.checksums.Calc(merged)
	}

	newInfo := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: newVersion, Timestamp: newTimestamp, Checksum: checksum}
	newPath := filepath.Join(h.Dir, EncodeObjectName(newInfo))
	if err := s.fileIO.WriteFile(context.Background(), newPath, merged, sync); err != nil {
		return err
	}

	deleteOldVersion := !h.Cow.IsCOW(objNo)
	if deleteOldVersion && predecessor.Exists() {
		oldPath := filepath.Join(h.Dir, EncodeObjectName(predecessor))
		if err := s.fileIO.Remove(oldPath); err != nil {
			log.Warn("failed to delete superseded object during COW write", "path", oldPath, "error", err)
		} else {
			h.Metadata.Versions.RemoveObjectVersionInfo(predecessor.ObjectNumber, predecessor.Version, predecessor.Timestamp)
		}
	}

	h.Metadata.Versions.AddObjectVersionInfo(objNo, newVersion, newTimestamp, checksum)
	h.Cow.ObjectChanged(objNo)
	s.bumpLastObjectNumber(h, objNo)
	s.refreshFileSize(h, objNo, int64(len(merged)))
	return s.appendVersionSnapshot(h, newTimestamp)
}

func (s *StorageLayout) partialWriteNoCOW(h *FileHandle, data []byte, objNo osd.ObjectNumber, offset int64, newVersion osd.ObjectVersion, newTimestamp osd.Timestamp, sync bool) error {
	if s.checksums.Enabled() {
		panic("partialWriteNoCOW: checksums must be disabled on this path")
	}

	var predecessor osd.ObjectVersionInfo
	var err error
	if h.Cow.CowEnabled() {
		predecessor, err = h.Metadata.Versions.GetLatestObjectVersionBefore(objNo, osd.NoCowTimestamp, h.Metadata.LastObjectNumber+1)
	} else {
		predecessor, err = h.Metadata.Versions.GetLargestObjectVersion(objNo)
	}
	if err != nil && err != osd.ErrNotFound {
		return err
	}

	path := filepath.Join(h.Dir, EncodeObjectName(predecessor))
	if !predecessor.Exists() {
		if err := s.fileIO.SetLength(path, 0); err != nil {
			return err
		}
	}
	if err := s.fileIO.WriteAt(path, data, offset, sync); err != nil {
		return err
	}

	if predecessor.Version != newVersion || predecessor.Timestamp != newTimestamp {
		newInfo := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: newVersion, Timestamp: newTimestamp, Checksum: 0}
		newPath := filepath.Join(h.Dir, EncodeObjectName(newInfo))
		if err := s.fileIO.Rename(path, newPath); err != nil {
			return err
		}
		if predecessor.Exists() {
			h.Metadata.Versions.RemoveObjectVersionInfo(predecessor.ObjectNumber, predecessor.Version, predecessor.Timestamp)
		}
		h.Metadata.Versions.AddObjectVersionInfo(objNo, newVersion, newTimestamp, 0)
	}
	s.bumpLastObjectNumber(h, objNo)
	return nil
}

func (s *StorageLayout) completeWrite(h *FileHandle, data []byte, objNo osd.ObjectNumber, newVersion osd.ObjectVersion, newTimestamp osd.Timestamp, sync bool) error {
	predecessor, err := h.Metadata.Versions.GetLargestObjectVersion(objNo)
	if err != nil && err != osd.ErrNotFound {
		return err
	}

	checksum := osd.Checksum(0)
	if s.checksums.Enabled() {
		checksum = s.checksums.Calc(data)
	}

	newInfo := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: newVersion, Timestamp: newTimestamp, Checksum: checksum}
	newPath := filepath.Join(h.Dir, EncodeObjectName(newInfo))
	if err := s.fileIO.WriteFile(context.Background(), newPath, data, sync); err != nil {
		return err
	}

	deleteOldVersion := !h.Cow.IsCOW(objNo)
	changed := predecessor.Version != newVersion || predecessor.Timestamp != newTimestamp || predecessor.Checksum != checksum
	if deleteOldVersion && predecessor.Exists() && changed {
		oldPath := filepath.Join(h.Dir, EncodeObjectName(predecessor))
		if err := s.fileIO.Remove(oldPath); err != nil {
			log.Warn("failed to delete superseded object during complete write", "path", oldPath, "error", err)
		} else {
			h.Metadata.Versions.RemoveObjectVersionInfo(predecessor.ObjectNumber, predecessor.Version, predecessor.Timestamp)
		}
	}

	h.Metadata.Versions.AddObjectVersionInfo(objNo, newVersion, newTimestamp, checksum)
	h.Cow.ObjectChanged(objNo)
	s.bumpLastObjectNumber(h, objNo)
	return nil
}

// TruncateObject resizes object objNo to newLength (spec §4.H
// truncateObject). newLength must not exceed the object's stripe size.
func (s *StorageLayout) TruncateObject(h *FileHandle, objNo osd.ObjectNumber, newLength int64, newVersion osd.ObjectVersion, newTimestamp osd.Timestamp, cow bool) error {
	stripeSize := h.Metadata.StripingPolicy.StripeSizeForObject(objNo)
	if newLength > stripeSize {
		panic("truncateObject: newLength exceeds stripe size")
	}

	cur, err := h.Metadata.Versions.GetLargestObjectVersion(objNo)
	if err != nil && err != osd.ErrNotFound {
		return err
	}
	curPath := filepath.Join(h.Dir, EncodeObjectName(cur))

	var curLen int64
	if cur.Exists() {
		curLen, err = s.fileIO.Size(curPath)
		if err != nil {
			return err
		}
	}
	if curLen == newLength {
		return nil
	}

	if cow || s.checksums.Enabled() {
		merged, err := s.unwrapObjectData(h, cur, stripeSize)
		if err != nil {
			return err
		}
		merged = resize(merged, newLength)

		checksum := osd.Checksum(0)
		if s.checksums.Enabled() {
			checksum = s.checksums.Calc(merged)
		}

		if !cow && cur.Exists() {
			if err := s.fileIO.Remove(curPath); err != nil {
				log.Warn("failed to delete predecessor during truncate", "path", curPath, "error", err)
			} else {
				h.Metadata.Versions.RemoveObjectVersionInfo(cur.ObjectNumber, cur.Version, cur.Timestamp)
			}
		}

		newInfo := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: newVersion, Timestamp: newTimestamp, Checksum: checksum}
		newPath := filepath.Join(h.Dir, EncodeObjectName(newInfo))
		if err := s.fileIO.WriteFile(context.Background(), newPath, merged, false); err != nil {
			return err
		}
		h.Metadata.Versions.AddObjectVersionInfo(objNo, newVersion, newTimestamp, checksum)
		s.refreshFileSize(h, objNo, newLength)
		if err := s.appendVersionSnapshot(h, newTimestamp); err != nil {
			return err
		}
		return h.TruncateLog.Append(TruncateLogEntry{ObjectNumber: objNo, Length: newLength, Version: newVersion})
	}

	if err := s.fileIO.SetLength(curPath, newLength); err != nil {
		return err
	}
	if cur.Version != newVersion || cur.Timestamp != newTimestamp {
		// Preserved intentionally (not "fixed"): the renamed file's checksum
		// field becomes 0 even though the payload may be unchanged, matching
		// historical on-disk behavior for in-place, non-COW truncation.
		newInfo := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: newVersion, Timestamp: newTimestamp, Checksum: 0}
		newPath := filepath.Join(h.Dir, EncodeObjectName(newInfo))
		if err := s.fileIO.Rename(curPath, newPath); err != nil {
			return err
		}
		if cur.Exists() {
			h.Metadata.Versions.RemoveObjectVersionInfo(cur.ObjectNumber, cur.Version, cur.Timestamp)
		}
		h.Metadata.Versions.AddObjectVersionInfo(objNo, newVersion, newTimestamp, 0)
	}
	return h.TruncateLog.Append(TruncateLogEntry{ObjectNumber: objNo, Length: newLength, Version: newVersion})
}

// SetTruncateEpoch persists newEpoch to h's .tepoch file (spec §3 lifecycle,
// §4.F), creating the file's leaf directory lazily if this is the first
// operation performed against it.
func (s *StorageLayout) SetTruncateEpoch(h *FileHandle, newEpoch int64) error {
	if err := s.fileIO.MkdirAll(context.Background(), h.Dir); err != nil {
		return err
	}
	if err := WriteTruncateEpoch(h.Dir, newEpoch); err != nil {
		return err
	}
	h.Metadata.TruncateEpoch = newEpoch
	return nil
}

// CreatePaddingObject creates an empty (zero-data) file of length size for
// objNo (spec §4.H createPaddingObject), creating the file's leaf directory
// if needed.
func (s *StorageLayout) CreatePaddingObject(h *FileHandle, objNo osd.ObjectNumber, version osd.ObjectVersion, timestamp osd.Timestamp, size int64) error {
	if err := s.fileIO.MkdirAll(context.Background(), h.Dir); err != nil {
		return err
	}
	checksum := osd.Checksum(0)
	if s.checksums.Enabled() {
		checksum = s.checksums.Calc(make([]byte, size))
	}
	info := osd.ObjectVersionInfo{ObjectNumber: objNo, Version: version, Timestamp: timestamp, Checksum: checksum}
	path := filepath.Join(h.Dir, EncodeObjectName(info))
	if err := s.fileIO.SetLength(path, size); err != nil {
		return err
	}
	h.Metadata.Versions.AddObjectVersionInfo(objNo, version, timestamp, checksum)
	s.bumpLastObjectNumber(h, objNo)
	return nil
}

// DeleteObject removes a specific version of objNo, or the largest version
// when version == 0, or the largest version before timestamp == 0's
// "largest-version-before" semantics (spec §4.H deleteObject/deleteFile).
func (s *StorageLayout) DeleteObject(h *FileHandle, objNo osd.ObjectNumber, version osd.ObjectVersion, timestamp osd.Timestamp) error {
	var target osd.ObjectVersionInfo
	var err error
	switch {
	case version == 0:
		target, err = h.Metadata.Versions.GetLargestObjectVersion(objNo)
	case timestamp == 0:
		target, err = h.Metadata.Versions.GetLargestObjectVersionBefore(objNo, version)
	default:
		target, err = h.Metadata.Versions.GetObjectVersionInfo(objNo, version, timestamp)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(h.Dir, EncodeObjectName(target))
	if err := s.fileIO.Remove(path); err != nil {
		return err
	}
	h.Metadata.Versions.RemoveObjectVersionInfo(target.ObjectNumber, target.Version, target.Timestamp)
	return nil
}

// DeleteFile removes every object in h's directory and, when deleteMetadata
// is set, also the metadata dotfiles, the then-empty directory itself and
// empty ancestor directories up to (not including) the storage root (spec
// §4.H deleteFile).
func (s *StorageLayout) DeleteFile(h *FileHandle, deleteMetadata bool) error {
	entries, err := readDirNames(h.Dir)
	if err != nil {
		return err
	}
	for _, name := range entries {
		if len(name) > 0 && name[0] == '.' && !deleteMetadata {
			continue
		}
		if err := s.fileIO.Remove(filepath.Join(h.Dir, name)); err != nil {
			return err
		}
	}
	if !deleteMetadata {
		return nil
	}
	return removeEmptyAncestors(s.root, h.Dir)
}

func (s *StorageLayout) bumpLastObjectNumber(h *FileHandle, objNo osd.ObjectNumber) {
	if objNo > h.Metadata.LastObjectNumber {
		h.Metadata.LastObjectNumber = objNo
	}
}

// refreshFileSize recomputes h.Metadata.FileSize after objNo's on-disk
// length changed to newLen. Only the last object's length feeds into the
// logical file size (spec invariant 4), so writes/truncates of any earlier
// object leave FileSize untouched.
func (s *StorageLayout) refreshFileSize(h *FileHandle, objNo osd.ObjectNumber, newLen int64) {
	if objNo != h.Metadata.LastObjectNumber {
		return
	}
	fileSize := newLen
	if objNo > 0 {
		fileSize += h.Metadata.StripingPolicy.ObjectEndOffset(objNo-1) + 1
	}
	h.Metadata.FileSize = fileSize
}

// appendVersionSnapshot records a whole-file snapshot in h.VersionLog after a
// COW commit, when versioning is enabled for this file (spec §4.E: entries
// are appended on COW commits; the log's presence is what makes versioning
// enabled for a file in the first place, so a file with no prior entries
// stays unversioned).
func (s *StorageLayout) appendVersionSnapshot(h *FileHandle, newTimestamp osd.Timestamp) error {
	if !h.Metadata.Versions.IsVersioningEnabled() {
		return nil
	}
	return h.VersionLog.Append(VersionLogEntry{
		FileSize:   h.Metadata.FileSize,
		NumObjects: int64(h.Metadata.LastObjectNumber) + 1,
		Timestamp:  newTimestamp,
	})
}

func resize(buf []byte, newLength int64) []byte {
	if int64(len(buf)) == newLength {
		return buf
	}
	out := make([]byte, newLength)
	copy(out, buf)
	return out
}
