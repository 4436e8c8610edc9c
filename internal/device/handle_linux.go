//go:build linux

package device

import (
	"io"

	"golang.org/x/sys/unix"
)

// fdHandle drives the device with raw syscalls so that every Send maps to
// exactly one write(2), which *os.File does not guarantee.
type fdHandle struct {
	fd int
}

func openDevice(path string) (Handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &fdHandle{fd: fd}, nil
}

func (h *fdHandle) Read(p []byte) (int, error) {
	n, err := unix.Read(h.fd, p)
	if n < 0 {
		n = 0
	}
	if n == 0 && err == nil && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

func (h *fdHandle) Write(p []byte) (int, error) {
	n, err := unix.Write(h.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (h *fdHandle) Seek(offset int64, whence int) (int64, error) {
	return unix.Seek(h.fd, offset, whence)
}

func (h *fdHandle) Close() error {
	return unix.Close(h.fd)
}
