package fs

import (
	"github.com/ncw/directio"
	"github.com/objectgrid/osd"
)

// ReadWholeStripeDirect reads the entire contents of path using O_DIRECT,
// aligned I/O (github.com/ncw/directio), bypassing the page cache for the
// common "read the full object" case ReadObject serves with offset=0,
// length=-1. It is an optional fast path: callers that can't guarantee
// directio.AlignSize-aligned reads (most partial reads) should use
// FileIO.ReadAt instead, which goes through the regular buffered path.
func ReadWholeStripeDirect(path string, stripeSize int64) ([]byte, error) {
	f, err := directio.OpenFile(path, directio.O_RDONLY, 0o644)
	if err != nil {
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	defer f.Close()

	aligned := directio.AlignedBlock(int(alignUp(stripeSize, directio.BlockSize)))
	n, err := f.Read(aligned)
	if err != nil && n == 0 {
		return nil, osd.Error{Code: osd.FileIOError, Err: err}
	}
	if int64(n) > stripeSize {
		n = int(stripeSize)
	}
	return aligned[:n], nil
}

func alignUp(n, align int64) int64 {
	if n%align == 0 {
		return n
	}
	return n + (align - n%align)
}
