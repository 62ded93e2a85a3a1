package fs

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	log "log/slog"
	"io"
	"os"

	"github.com/objectgrid/osd"
)

const tlogFileName = ".tlog"

// TruncateLogEntry records one truncation decision against an object, so a
// crash between the truncate rename and the caller's next read can still
// recover what length/version the object was truncated to. This module owns
// its own length-delimited JSON record format rather than depending on the
// external Protocol-Buffer TruncateLog message other collaborators use --
// that schema belongs to a system this module doesn't import.
type TruncateLogEntry struct {
	ObjectNumber osd.ObjectNumber  `json:"objectNumber"`
	Length       int64             `json:"length"`
	Version      osd.ObjectVersion `json:"version"`
}

// TruncateLog appends and replays length-delimited TruncateLogEntry records
// in dir's .tlog file: each record is a 4-byte big-endian length prefix
// followed by that many bytes of JSON, so a reader can skip non-decodable
// tails without scanning byte-by-byte for JSON boundaries.
type TruncateLog struct {
	path string
}

func NewTruncateLog(dir string) *TruncateLog {
	return &TruncateLog{path: dir + string(os.PathSeparator) + tlogFileName}
}

func (l *TruncateLog) Append(entry TruncateLogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	if _, err := w.Write(body); err != nil {
		return osd.Error{Code: osd.FileIOError, Err: err}
	}
	return w.Flush()
}

func (l *TruncateLog) ReadAll() ([]TruncateLogEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var entries []TruncateLogEntry
	for {
		var lenPrefix [4]byte
		if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
			if err != io.EOF {
				log.Warn("truncated .tlog length prefix discarded", "path", l.path)
			}
			break
		}
		n := binary.BigEndian.Uint32(lenPrefix[:])
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			log.Warn("truncated .tlog record body discarded", "path", l.path)
			break
		}
		var entry TruncateLogEntry
		if err := json.Unmarshal(body, &entry); err != nil {
			log.Warn("corrupt .tlog record discarded", "path", l.path, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
