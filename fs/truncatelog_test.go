package fs

import "testing"

func TestTruncateLogAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	tlog := NewTruncateLog(dir)

	entries := []TruncateLogEntry{
		{ObjectNumber: 0, Length: 4000, Version: 3},
		{ObjectNumber: 1, Length: 0, Version: 1},
	}
	for _, e := range entries {
		if err := tlog.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := tlog.ReadAll()
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

func TestTruncateLogEmpty(t *testing.T) {
	dir := t.TempDir()
	tlog := NewTruncateLog(dir)
	got, err := tlog.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on absent log: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}
