package osd

import (
	"context"
	"errors"
	log "log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry executes task with Fibonacci backoff up to 5 retries. If retries are
// exhausted, gaveUpTask is invoked (when not nil) and the final error is returned.
func Retry(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	b := retry.NewFibonacci(1 * time.Second)
	if err := retry.Do(ctx, retry.WithMaxRetries(5, b), task); err != nil {
		log.Warn(err.Error() + ", gave up")
		if gaveUpTask != nil {
			gaveUpTask(ctx)
		}
		return err
	}
	return nil
}

// RetryableError marks err as transient so Retry's backoff loop retries it
// instead of giving up immediately; callers typically gate this behind
// ShouldRetry.
func RetryableError(err error) error {
	return retry.RetryableError(err)
}

// ShouldRetry reports whether the error is retryable (transient) as opposed
// to a permanent failure that would just be retried into the ground.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, os.ErrExist) {
		return false
	}

	switch {
	case errors.Is(err, syscall.EROFS),
		errors.Is(err, syscall.ENOSPC),
		errors.Is(err, syscall.EDQUOT),
		errors.Is(err, syscall.EMFILE),
		errors.Is(err, syscall.ENFILE),
		errors.Is(err, syscall.EACCES),
		errors.Is(err, syscall.EPERM),
		errors.Is(err, syscall.ENAMETOOLONG),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.ENOTEMPTY),
		errors.Is(err, syscall.EMLINK),
		errors.Is(err, syscall.ELOOP),
		errors.Is(err, syscall.EXDEV),
		errors.Is(err, syscall.EEXIST),
		errors.Is(err, syscall.EINVAL):
		return false
	}

	if strings.Contains(err.Error(), "read-only file system") {
		return false
	}
	return true
}

// IsFailoverQualifiedIOError reports whether an error indicates the underlying
// drive/filesystem is unhealthy in a way that warrants surfacing a
// FailoverQualifiedError rather than retrying further. A single-drive
// deployment still benefits from distinguishing "retry this" from "give up".
func IsFailoverQualifiedIOError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	always := []syscall.Errno{
		syscall.EIO,
		syscall.ENODEV,
		syscall.ENXIO,
		syscall.EROFS,
		syscall.ENOSPC,
		syscall.EDQUOT,
	}
	for _, code := range always {
		if errors.Is(err, code) {
			return true
		}
	}

	// Linux-specific errno values kept numeric for cross-platform portability.
	linuxSpecific := []syscall.Errno{
		121, // EREMOTEIO
		117, // EUCLEAN
		123, // ENOMEDIUM
		124, // EMEDIUMTYPE
	}
	for _, code := range linuxSpecific {
		if errors.Is(err, code) {
			return true
		}
	}

	s := err.Error()
	if strings.Contains(s, "read-only file system") || strings.Contains(s, "readonly file system") {
		return true
	}
	return false
}
