package fs

import (
	"context"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/objectgrid/osd"
)

// readDirNames lists the base names of dir's entries, or an empty slice if
// dir does not exist.
func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// removeEmptyAncestors walks upward from dir itself toward (but not
// including) root, removing directories left empty by DeleteFile, and
// stopping at the first non-empty one.
func removeEmptyAncestors(root, dir string) error {
	cur := dir
	root = filepath.Clean(root)
	for {
		cur = filepath.Clean(cur)
		if cur == root || !strings.HasPrefix(cur, root) {
			return nil
		}
		entries, err := os.ReadDir(cur)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return osd.Error{Code: osd.FileIOError, Err: err}
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(cur); err != nil {
			return osd.Error{Code: osd.FileIOError, Err: err}
		}
		cur = filepath.Dir(cur)
	}
}

// GetFileIDList performs a DFS over root, descending into every directory
// whose name does not contain ':' (the inner hash-fanout directories),
// skipping files whose names contain '.' or end in ".ser". It returns the
// basenames of the remaining object files.
//
// Caveat, preserved deliberately: this yields object-file basenames, not
// file-ids. A file's directory name (the fileId, safe-transformed) is one
// level above the object files this walk actually emits. Callers that need
// file-ids should use GetFileList instead.
func GetFileIDList(root string) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return osd.Error{Code: osd.FileIOError, Err: err}
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				if !strings.Contains(name, ":") {
					if err := walk(filepath.Join(dir, name)); err != nil {
						return err
					}
				}
				continue
			}
			if strings.Contains(name, ".") || strings.HasSuffix(name, ".ser") {
				continue
			}
			out = append(out, name)
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return out, nil
}

// dirHoldsObjectFiles reports whether dir directly contains at least one
// non-dotfile regular file, i.e. whether it is a per-file leaf directory
// rather than an intermediate hash-fanout directory.
func dirHoldsObjectFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, osd.Error{Code: osd.FileIOError, Err: err}
	}
	for _, e := range entries {
		if !e.IsDir() && len(e.Name()) > 0 && e.Name()[0] != '.' {
			return true, nil
		}
	}
	return false, nil
}

// FileListEntry is one file emitted by GetFileList: a reconstructed fileId,
// an estimated total file size, and the configured object size in KiB.
type FileListEntry struct {
	FileId       osd.FileId
	FileSize     int64
	ObjectSizeKB int64
}

// EnumerationCursor holds the caller-owned directory stack for a resumable
// GetFileList walk. Its zero value starts a fresh walk from the storage root.
type EnumerationCursor struct {
	stack []string
}

// GetFileList performs a resumable paged walk over root starting from
// cursor's held directory stack (or the root, if cursor.stack is empty and
// this is the first call), picking the object with the largest version per
// leaf directory and estimating that file's total size. It returns at most
// maxN entries and reports whether more remain.
func GetFileList(ctx context.Context, root string, policy osd.StripingPolicy, objectSizeKB int64, cursor *EnumerationCursor, maxN int) ([]FileListEntry, bool, error) {
	if cursor.stack == nil {
		cursor.stack = []string{root}
	}

	tasks := osd.NewTaskRunner(ctx, 8)
	var results []FileListEntry
	var resultsMu sync.Mutex

	for len(cursor.stack) > 0 && len(results) < maxN {
		dir := cursor.stack[len(cursor.stack)-1]
		cursor.stack = cursor.stack[:len(cursor.stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, false, osd.Error{Code: osd.FileIOError, Err: err}
		}

		var fileDirs []string
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			child := filepath.Join(dir, e.Name())
			isFileDir, err := dirHoldsObjectFiles(child)
			if err != nil {
				return nil, false, err
			}
			if isFileDir {
				fileDirs = append(fileDirs, child)
			} else {
				cursor.stack = append(cursor.stack, child)
			}
		}

		for _, fd := range fileDirs {
			fd := fd
			tasks.Go(func() error {
				entry, ok, err := describeFileDir(fd, policy, objectSizeKB)
				if err != nil {
					log.Warn("failed to describe file directory during enumeration", "dir", fd, "error", err)
					return nil
				}
				if ok {
					resultsMu.Lock()
					results = append(results, entry)
					resultsMu.Unlock()
				}
				return nil
			})
		}
		if err := tasks.Wait(); err != nil {
			return nil, false, err
		}
	}

	hasMore := len(cursor.stack) > 0
	if len(results) > maxN {
		results = results[:maxN]
		hasMore = true
	}
	return results, hasMore, nil
}

// describeFileDir keeps the largest version of each object number in fd,
// takes the smallest object number as head and the largest as tail,
// estimates the reconstructed fileId's total size, and reports ok=false if
// fd holds no parseable object files.
func describeFileDir(fd string, policy osd.StripingPolicy, objectSizeKB int64) (FileListEntry, bool, error) {
	entries, err := os.ReadDir(fd)
	if err != nil {
		return FileListEntry{}, false, osd.Error{Code: osd.FileIOError, Err: err}
	}

	type candidate struct {
		info osd.ObjectVersionInfo
		size int64
	}
	byObject := make(map[osd.ObjectNumber]candidate)
	var stripeCount int64

	for _, e := range entries {
		name := e.Name()
		if len(name) == 0 || name[0] == '.' {
			continue
		}
		info, err := ParseObjectName(name)
		if err != nil {
			log.Warn("illegal file discovered and ignored", "file", filepath.Join(fd, name), "error", err)
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return FileListEntry{}, false, osd.Error{Code: osd.FileIOError, Err: err}
		}
		existing, ok := byObject[info.ObjectNumber]
		if !ok || info.Version > existing.info.Version {
			byObject[info.ObjectNumber] = candidate{info: info, size: fi.Size()}
		}
	}
	if len(byObject) == 0 {
		return FileListEntry{}, false, nil
	}
	stripeCount = int64(len(byObject))

	var head, tail candidate
	var minObj, maxObj osd.ObjectNumber
	first := true
	for n, c := range byObject {
		if first || n < minObj {
			minObj = n
			head = c
		}
		if first || n > maxObj {
			maxObj = n
			tail = c
		}
		first = false
	}

	var fileSize int64
	if stripeCount == 1 {
		fileSize = head.size
	} else {
		fileSize = policy.StripeSizeForObject(minObj)*(stripeCount-1) + tail.size
	}

	fileId := FileIdFromSafe(filepath.Base(fd))
	return FileListEntry{FileId: fileId, FileSize: fileSize, ObjectSizeKB: objectSizeKB}, true, nil
}
