package fs

import (
	log "log/slog"
	"os"
	"path/filepath"

	"github.com/objectgrid/osd"
)

// FileHandle is the per-open-file state StorageLayout operates on: the
// directory an open file resolves to, its reconstructed osd.FileMetadata,
// and the small auxiliary logs/policy living alongside it. It is produced by
// LoadFileMetadata on first open and held by the caller for the lifetime of
// the open file.
type FileHandle struct {
	FileId      osd.FileId
	Dir         string
	Metadata    osd.FileMetadata
	VersionLog  *FileVersionLog
	TruncateLog *TruncateLog
	Cow         osd.CowPolicy
}

// LoadFileMetadata scans fileId's directory under root and reconstructs a
// FileHandle (spec component I): it is the sole place VersionManager,
// file size, last object number, and truncate epoch are derived from
// on-disk state rather than carried forward in memory.
func LoadFileMetadata(root string, hasher *PathHasher, fileId osd.FileId, policy osd.StripingPolicy, cowEnabled bool) (*FileHandle, error) {
	dir := filepath.Join(root, hasher.RelPath(fileId))

	vlog := NewFileVersionLog(dir)
	vlogEntries, err := vlog.ReadAll()
	if err != nil {
		return nil, err
	}
	versioningEnabled := len(vlogEntries) > 0

	versions := newVersionManager(versioningEnabled)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	indexed := 0
	for _, e := range entries {
		name := e.Name()
		if len(name) == 0 || name[0] == '.' {
			continue
		}
		info, parseErr := ParseObjectName(name)
		if parseErr != nil {
			log.Warn("illegal file discovered and ignored", "file", filepath.Join(dir, name), "error", parseErr)
			continue
		}
		versions.AddObjectVersionInfo(info.ObjectNumber, info.Version, info.Timestamp, info.Checksum)
		indexed++
	}

	truncateEpoch, err := ReadTruncateEpoch(dir)
	if err != nil {
		return nil, err
	}

	tlog := NewTruncateLog(dir)

	md := osd.FileMetadata{
		StripingPolicy:         policy,
		Versions:               versions,
		GlobalLastObjectNumber: -1,
		TruncateEpoch:          truncateEpoch,
	}

	switch {
	case versioningEnabled:
		latest := vlogEntries[len(vlogEntries)-1]
		md.FileSize = latest.FileSize
		if latest.NumObjects > 0 {
			md.LastObjectNumber = osd.ObjectNumber(latest.NumObjects - 1)
		}
	case indexed > 0:
		lastObjNo := versions.GetLastObjectId()
		largest, err := versions.GetLargestObjectVersion(lastObjNo)
		if err != nil {
			return nil, err
		}
		objPath := filepath.Join(dir, EncodeObjectName(largest))
		length, err := NewFileIO().Size(objPath)
		if err != nil {
			return nil, err
		}
		lastObjSize := length
		if length == 0 {
			lastObjSize = policy.StripeSizeForObject(lastObjNo)
		}
		fileSize := lastObjSize
		if lastObjNo > 0 {
			fileSize += policy.ObjectEndOffset(lastObjNo-1) + 1
		}
		md.FileSize = fileSize
		md.LastObjectNumber = lastObjNo
	}

	return &FileHandle{
		FileId:      fileId,
		Dir:         dir,
		Metadata:    md,
		VersionLog:  vlog,
		TruncateLog: tlog,
		Cow:         NewCowPolicy(cowEnabled),
	}, nil
}
