package fs

import (
	"strings"
	"testing"

	"github.com/objectgrid/osd"
)

func TestPathHasherDeterministic(t *testing.T) {
	h := NewPathHasher(3, 256)
	id := osd.FileId("object-123")

	first := h.RelPath(id)
	second := h.RelPath(id)
	if first != second {
		t.Fatalf("RelPath not deterministic: %q vs %q", first, second)
	}
	if !strings.HasSuffix(first, string(rune('/'))) {
		t.Fatalf("RelPath must end with separator, got %q", first)
	}
}

func TestPathHasherDepthBound(t *testing.T) {
	maxDirDepth := 3
	h := NewPathHasher(maxDirDepth, 256)

	for _, id := range []osd.FileId{"a", "b", "object-with-a-long-name", "x:y:z"} {
		rel := h.RelPath(id)
		parts := strings.Split(strings.Trim(rel, "/"), "/")
		// Last part is the file-id component; everything before it is a hash chunk.
		hashDirs := len(parts) - 1
		if hashDirs > maxDirDepth {
			t.Fatalf("RelPath(%q) = %q has %d hash directories, want <= %d", id, rel, hashDirs, maxDirDepth)
		}
	}
}

func TestPathHasherFileIdSafeRoundTrip(t *testing.T) {
	id := osd.FileId("host:volume:123")
	safe := FileIdSafe(id)
	if strings.Contains(safe, ":") {
		t.Fatalf("FileIdSafe left a ':' in %q", safe)
	}
	back := FileIdFromSafe(safe)
	if back != id {
		t.Fatalf("FileIdFromSafe(FileIdSafe(%q)) = %q, want original", id, back)
	}
}

func TestHexDigitsFor(t *testing.T) {
	cases := map[int]int{
		1:    1,
		15:   1,
		16:   1,
		17:   2,
		256:  2,
		257:  3,
		4096: 3,
	}
	for maxSubdirs, want := range cases {
		got := hexDigitsFor(maxSubdirs)
		if got != want {
			t.Errorf("hexDigitsFor(%d) = %d, want %d", maxSubdirs, got, want)
		}
	}
}
