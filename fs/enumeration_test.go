package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/objectgrid/osd"
)

func TestGetFileIDListSkipsHashDirsAndDotfiles(t *testing.T) {
	root := t.TempDir()
	hasher := NewPathHasher(2, 256)
	policy := fixedStripingPolicy{stripeSize: 128 * 1024}
	layout := NewStorageLayout(root, hasher, NewChecksumEngine(false, DefaultChecksumAlgorithm, nil), false)

	h, err := layout.OpenFile("F1", policy, false)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	data := make([]byte, 128*1024)
	if err := layout.WriteObject(context.Background(), h, data, 0, 0, 1, 0, false); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	names, err := GetFileIDList(root)
	if err != nil {
		t.Fatalf("GetFileIDList: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("expected exactly one enumerated object basename, got %v", names)
	}
	// Caveat preserved deliberately: this is the object file's basename, not "F1".
	if names[0] == "F1" {
		t.Fatal("GetFileIDList unexpectedly returned the file-id rather than an object basename")
	}
}

func TestGetFileListReconstructsFileId(t *testing.T) {
	root := t.TempDir()
	hasher := NewPathHasher(2, 256)
	policy := fixedStripingPolicy{stripeSize: 128 * 1024}
	layout := NewStorageLayout(root, hasher, NewChecksumEngine(false, DefaultChecksumAlgorithm, nil), false)

	h, err := layout.OpenFile(osd.FileId("host:vol:1"), policy, false)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	data := make([]byte, 1024)
	if err := layout.WriteObject(context.Background(), h, data, 0, 0, 1, 0, false); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	cursor := &EnumerationCursor{}
	listed, more, err := GetFileList(context.Background(), root, policy, 128, cursor, 10)
	if err != nil {
		t.Fatalf("GetFileList: %v", err)
	}
	if more {
		t.Fatal("expected no more pages for a single file")
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 file listed, got %d", len(listed))
	}
	if listed[0].FileId != "host:vol:1" {
		t.Fatalf("FileId = %q, want %q", listed[0].FileId, "host:vol:1")
	}
}

func TestRemoveEmptyAncestorsStopsAtRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "aa", "bb", "leaf")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := removeEmptyAncestors(root, nested); err != nil {
		t.Fatalf("removeEmptyAncestors: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "aa")); !os.IsNotExist(err) {
		t.Fatal("expected empty ancestor directories to be removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal("storage root itself must not be removed")
	}
}
