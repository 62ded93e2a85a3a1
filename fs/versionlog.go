package fs

import (
	"bufio"
	log "log/slog"
	"encoding/json"
	"io"
	"os"

	"github.com/objectgrid/osd"
)

// vlogFileName is the append-only version log living alongside a file's
// objects. Its presence with at least one entry implies versioning is
// enabled for that file (spec component E).
const vlogFileName = ".vlog"

// VersionLogEntry is one appended record: a snapshot of file size and object
// count taken at a given timestamp, used to reconstruct FileMetadata.FileSize
// and LastObjectNumber on load without re-statting every object.
type VersionLogEntry struct {
	FileSize   int64        `json:"fileSize"`
	NumObjects int64        `json:"numObjects"`
	Timestamp  osd.Timestamp `json:"timestamp"`
}

// FileVersionLog appends VersionLogEntry records to a per-file .vlog file and
// can replay them back. It is a cache of history, not a source of truth:
// StorageLayout always rebuilds actual version state from the directory
// listing; the log exists to avoid re-deriving file-level size/count
// snapshots by restatting every object on every load.
type FileVersionLog struct {
	path string
}

// NewFileVersionLog returns a log bound to dir's .vlog file. dir must already
// exist; the file itself is created lazily on first Append.
func NewFileVersionLog(dir string) *FileVersionLog {
	return &FileVersionLog{path: dir + string(os.PathSeparator) + vlogFileName}
}

// Append opens the log for append (creating it if absent) and writes entry as
// one JSON record, flushing before return so a crash after Append observes
// either the whole record or none of it.
func (l *FileVersionLog) Append(entry VersionLogEntry) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	if err := enc.Encode(entry); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	if err := w.Flush(); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return nil
}

// ReadAll replays the log in order. A record that fails to decode (a torn
// write from a crash mid-append) ends replay at that point rather than
// erroring the whole read: every entry before the torn tail is still valid
// history, and it is logged at WARN.
func (l *FileVersionLog) ReadAll() ([]VersionLogEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	var entries []VersionLogEntry
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var e VersionLogEntry
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				break
			}
			log.Warn("truncated .vlog tail discarded", "path", l.path, "error", err)
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Exists reports whether the log file is present and non-empty, which spec
// component E treats as "versioning enabled for this file".
func (l *FileVersionLog) Exists() bool {
	info, err := os.Stat(l.path)
	return err == nil && info.Size() > 0
}

// LatestBefore returns the most recent entry with Timestamp <= ts out of
// entries (already loaded via ReadAll), or false if none qualifies.
func LatestBefore(entries []VersionLogEntry, ts osd.Timestamp) (VersionLogEntry, bool) {
	var best VersionLogEntry
	found := false
	for _, e := range entries {
		if e.Timestamp <= ts && (!found || e.Timestamp > best.Timestamp) {
			best = e
			found = true
		}
	}
	return best, found
}
