package fs

import (
	"fmt"
	"os"
	"strings"

	"github.com/objectgrid/osd"
	"github.com/objectgrid/osd/cache"
)

const (
	pathCacheMinCapacity = 1024
	pathCacheMaxCapacity = 2048
)

// PathHasher maps a file-id to its relative leaf directory under the storage
// root, via a deterministic hex-hash fan-out (spec component A). Results are
// memoized in a bounded MRU cache keyed by the original file-id.
type PathHasher struct {
	maxDirDepth      int
	maxSubdirsPerDir int
	prefixLength     int
	hashCutLength    int
	cache            cache.Cache[osd.FileId, string]
}

// NewPathHasher builds a PathHasher for the given fan-out geometry: at most
// maxDirDepth nested hash directories, each holding at most maxSubdirsPerDir
// entries.
func NewPathHasher(maxDirDepth, maxSubdirsPerDir int) *PathHasher {
	prefixLength := hexDigitsFor(maxSubdirsPerDir)
	return &PathHasher{
		maxDirDepth:      maxDirDepth,
		maxSubdirsPerDir: maxSubdirsPerDir,
		prefixLength:     prefixLength,
		hashCutLength:    maxDirDepth * prefixLength,
		cache:            cache.NewCache[osd.FileId, string](pathCacheMinCapacity, pathCacheMaxCapacity),
	}
}

// hexDigitsFor returns the smallest hex-digit width that can address
// maxSubdirsPerDir distinct directory slots (e.g. 2 for 256 subdirs).
func hexDigitsFor(maxSubdirsPerDir int) int {
	digits := 1
	capacity := int64(16)
	for capacity < int64(maxSubdirsPerDir) {
		capacity *= 16
		digits++
	}
	return digits
}

// hash32 reproduces the host-portable 31-multiplier rolling string hash
// (h = h*31 + byte) in 32-bit two's-complement arithmetic, matching the
// platform string-hash this layout's on-disk directories were built with.
// Re-implementations that use a different function will not find existing
// directories (see spec design notes on hash portability).
func hash32(fileId osd.FileId) int32 {
	var h int32
	for i := 0; i < len(fileId); i++ {
		h = h*31 + int32(fileId[i])
	}
	return h
}

// RelPath returns the per-file leaf directory, relative to the storage root,
// for fileId: a sequence of hash-prefix directory components followed by
// the (':' -> '_' transformed) file-id itself, always ending in '/'.
func (h *PathHasher) RelPath(fileId osd.FileId) string {
	if cached := h.cache.Get([]osd.FileId{fileId}); cached[0] != "" {
		return cached[0]
	}

	hex := h.hexDigest(fileId)
	cut := h.hashCutLength
	if cut > len(hex) {
		cut = len(hex)
	}
	used := hex[:cut]

	var b strings.Builder
	for i := 0; i < len(used); i += h.prefixLength {
		end := i + h.prefixLength
		if end > len(used) {
			end = len(used)
		}
		b.WriteString(used[i:end])
		b.WriteRune(os.PathSeparator)
	}
	b.WriteString(FileIdSafe(fileId))
	b.WriteRune(os.PathSeparator)

	rel := b.String()
	h.cache.Set([]osd.KeyValuePair[osd.FileId, string]{{Key: fileId, Value: rel}})
	return rel
}

// hexDigest renders the sign-extended 32-bit hash of fileId as 16 lowercase
// hex characters. The int32 -> int64 conversion sign-extends exactly as
// spec design notes require, before the bit pattern is hex-rendered.
func (h *PathHasher) hexDigest(fileId osd.FileId) string {
	h64 := int64(hash32(fileId))
	return fmt.Sprintf("%016x", uint64(h64))
}

// FileIdSafe transforms a file-id for filename use: ':' -> '_'.
func FileIdSafe(fileId osd.FileId) string {
	return strings.ReplaceAll(string(fileId), ":", "_")
}

// FileIdFromSafe reverses FileIdSafe: '_' -> ':'. Used by enumeration, which
// must reconstruct the original file-id from its on-disk directory name.
func FileIdFromSafe(safe string) osd.FileId {
	return osd.FileId(strings.ReplaceAll(safe, "_", ":"))
}
