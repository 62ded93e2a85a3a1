package fs

import (
	"os"
	"testing"
)

func TestFileVersionLogAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	vlog := NewFileVersionLog(dir)

	if vlog.Exists() {
		t.Fatal("new log should not exist yet")
	}

	entries := []VersionLogEntry{
		{FileSize: 100, NumObjects: 1, Timestamp: 0},
		{FileSize: 200, NumObjects: 2, Timestamp: 10},
		{FileSize: 300, NumObjects: 3, Timestamp: 20},
	}
	for _, e := range entries {
		if err := vlog.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if !vlog.Exists() {
		t.Fatal("expected log to exist after appends")
	}

	got, err := vlog.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("ReadAll returned %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got[i], entries[i])
		}
	}
}

func TestFileVersionLogDropsTornTail(t *testing.T) {
	dir := t.TempDir()
	vlog := NewFileVersionLog(dir)

	if err := vlog.Append(VersionLogEntry{FileSize: 1, NumObjects: 1, Timestamp: 0}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(dir+"/"+vlogFileName, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.Write([]byte(`{"fileSize":2,"numObje`)); err != nil {
		t.Fatalf("Write torn tail: %v", err)
	}
	f.Close()

	got, err := vlog.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected torn tail dropped, got %d entries", len(got))
	}
}

func TestLatestBefore(t *testing.T) {
	entries := []VersionLogEntry{
		{FileSize: 1, Timestamp: 0},
		{FileSize: 2, Timestamp: 10},
		{FileSize: 3, Timestamp: 20},
	}
	got, ok := LatestBefore(entries, 15)
	if !ok || got.FileSize != 2 {
		t.Fatalf("LatestBefore(15) = %+v, ok=%v, want FileSize=2", got, ok)
	}
	if _, ok := LatestBefore(entries, -1); ok {
		t.Fatal("expected no entry before timestamp -1")
	}
}
