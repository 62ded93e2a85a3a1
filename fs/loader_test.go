package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/objectgrid/osd"
)

// S6: loadFileMetadata after a crash reconstructs state from whatever names
// are present, ignoring stray dotfiles.
func TestLoadFileMetadataAfterCrash(t *testing.T) {
	root := t.TempDir()
	hasher := NewPathHasher(2, 256)
	policy := fixedStripingPolicy{stripeSize: 128 * 1024}

	dir := filepath.Join(root, hasher.RelPath("F"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	write := func(n osd.ObjectNumber, v osd.ObjectVersion, c osd.Checksum, size int) {
		info := osd.ObjectVersionInfo{ObjectNumber: n, Version: v, Timestamp: osd.NoCowTimestamp, Checksum: c}
		name := EncodeObjectName(info)
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	write(0, 1, 0xc1, 100)
	write(0, 2, 0xc2, 200)
	write(1, 1, 0xc3, 300)

	if err := WriteTruncateEpoch(dir, 7); err != nil {
		t.Fatalf("WriteTruncateEpoch: %v", err)
	}

	h, err := LoadFileMetadata(root, hasher, "F", policy, false)
	if err != nil {
		t.Fatalf("LoadFileMetadata: %v", err)
	}

	if got := h.Metadata.Versions.GetLastObjectId(); got != 1 {
		t.Fatalf("GetLastObjectId() = %d, want 1", got)
	}
	largest, err := h.Metadata.Versions.GetLargestObjectVersion(0)
	if err != nil {
		t.Fatalf("GetLargestObjectVersion(0): %v", err)
	}
	if largest.Version != 2 {
		t.Fatalf("largest(0).Version = %d, want 2", largest.Version)
	}
	if h.Metadata.TruncateEpoch != 7 {
		t.Fatalf("TruncateEpoch = %d, want 7", h.Metadata.TruncateEpoch)
	}
}

func TestLoadFileMetadataSkipsDotfiles(t *testing.T) {
	root := t.TempDir()
	hasher := NewPathHasher(2, 256)
	policy := fixedStripingPolicy{stripeSize: 128 * 1024}

	dir := filepath.Join(root, hasher.RelPath("F"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".stray"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	h, err := LoadFileMetadata(root, hasher, "F", policy, false)
	if err != nil {
		t.Fatalf("LoadFileMetadata: %v", err)
	}
	if h.Metadata.Versions.GetLastObjectId() != 0 {
		t.Fatalf("expected empty VersionManager, dotfile must not be indexed")
	}
}

func TestLoadFileMetadataMissingDirectory(t *testing.T) {
	root := t.TempDir()
	hasher := NewPathHasher(2, 256)
	policy := fixedStripingPolicy{stripeSize: 128 * 1024}

	h, err := LoadFileMetadata(root, hasher, "never-written", policy, false)
	if err != nil {
		t.Fatalf("LoadFileMetadata: %v", err)
	}
	if h.Metadata.FileSize != 0 {
		t.Fatalf("expected zero FileSize for never-written file, got %d", h.Metadata.FileSize)
	}
}
