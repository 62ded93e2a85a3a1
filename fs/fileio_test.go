package fs

import (
	"syscall"
	"testing"

	"github.com/objectgrid/osd"
)

func TestClassifyIOErrorFailoverQualified(t *testing.T) {
	err := classifyIOError(syscall.EIO)
	oerr, ok := err.(osd.Error)
	if !ok {
		t.Fatalf("expected osd.Error, got %T", err)
	}
	if oerr.Code != osd.FailoverQualifiedError {
		t.Fatalf("Code = %v, want FailoverQualifiedError", oerr.Code)
	}
}

func TestClassifyIOErrorPlain(t *testing.T) {
	err := classifyIOError(syscall.EINVAL)
	oerr, ok := err.(osd.Error)
	if !ok {
		t.Fatalf("expected osd.Error, got %T", err)
	}
	if oerr.Code != osd.FileIOError {
		t.Fatalf("Code = %v, want FileIOError", oerr.Code)
	}
}
