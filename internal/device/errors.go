package device

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrInvalidArgument is returned by Send for commands that cannot be passed
// to the driver as a C string.
var ErrInvalidArgument = errors.New("invalid command argument")

// OSError describes a failed operation on the device node.
type OSError struct {
	Op    string
	Path  string
	Errno syscall.Errno // zero when the cause carries no errno
	Err   error
}

func newOSError(op, path string, err error) *OSError {
	e := &OSError{Op: op, Path: path, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Errno = errno
	}
	return e
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OSError) Unwrap() error {
	return e.Err
}

// Code returns the integer the driver bridge reports for this failure:
// the negated errno for open failures and the raw -1 of write(2) otherwise.
func (e *OSError) Code() int {
	if e.Op == "open" {
		if e.Errno != 0 {
			return -int(e.Errno)
		}
		return -int(syscall.EIO)
	}
	return -1
}

// Code folds a Send result into the signed integer contract used by the
// HTTP, NATS and CLI surfaces: the byte count on success, a negative value
// on failure.
func Code(n int, err error) int {
	if err == nil {
		return n
	}
	if errors.Is(err, ErrInvalidArgument) {
		return -int(syscall.EINVAL)
	}
	var osErr *OSError
	if errors.As(err, &osErr) {
		return osErr.Code()
	}
	return -1
}
