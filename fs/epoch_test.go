package fs

import "testing"

func TestTruncateEpochRoundTrip(t *testing.T) {
	dir := t.TempDir()

	epoch, err := ReadTruncateEpoch(dir)
	if err != nil {
		t.Fatalf("ReadTruncateEpoch (absent): %v", err)
	}
	if epoch != 0 {
		t.Fatalf("expected 0 for absent .tepoch, got %d", epoch)
	}

	if err := WriteTruncateEpoch(dir, 7); err != nil {
		t.Fatalf("WriteTruncateEpoch: %v", err)
	}
	got, err := ReadTruncateEpoch(dir)
	if err != nil {
		t.Fatalf("ReadTruncateEpoch: %v", err)
	}
	if got != 7 {
		t.Fatalf("ReadTruncateEpoch() = %d, want 7", got)
	}
}

func TestMetadataEpochDefaultsToZero(t *testing.T) {
	dir := t.TempDir()
	epoch, err := ReadMetadataEpoch(dir)
	if err != nil {
		t.Fatalf("ReadMetadataEpoch (absent): %v", err)
	}
	if epoch != 0 {
		t.Fatalf("expected default 0, got %d", epoch)
	}

	if err := WriteMetadataEpoch(dir, 42); err != nil {
		t.Fatalf("WriteMetadataEpoch: %v", err)
	}
	got, err := ReadMetadataEpoch(dir)
	if err != nil {
		t.Fatalf("ReadMetadataEpoch: %v", err)
	}
	if got != 42 {
		t.Fatalf("ReadMetadataEpoch() = %d, want 42", got)
	}
}
