//go:build linux

package device

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestOpenDevice_RegularFileStandsInForNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_ctrl")
	if err := os.WriteFile(path, []byte("on 1 2 3"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ch := NewChannel(path, WithLogger(testLogger()))
	defer ch.Close()

	if got := ch.ReadStatus(); got != "on 1 2 3" {
		t.Errorf("ReadStatus() = %q, want %q", got, "on 1 2 3")
	}

	// The read left the offset at 8; the next read seeks back to 0 first.
	if got := ch.ReadStatus(); got != "on 1 2 3" {
		t.Errorf("second ReadStatus() = %q, want %q", got, "on 1 2 3")
	}
}

func TestOpenDevice_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent")
	ch := NewChannel(path, WithLogger(testLogger()))

	n, err := ch.Send("ON")
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("Send() error = %v, want ENOENT", err)
	}
	if code := Code(n, err); code >= 0 {
		t.Errorf("Code() = %d, want negative", code)
	}
	if got := ch.ReadStatus(); got != FallbackStatus {
		t.Errorf("ReadStatus() = %q, want %q", got, FallbackStatus)
	}
}

func TestOpenDevice_WriteIsSingleSyscall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_ctrl")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ch := NewChannel(path, WithLogger(testLogger()))
	n, err := ch.Send("OFF")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Send() = %d, want 3", n)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "OFF" {
		t.Errorf("file contents = %q, want %q", data, "OFF")
	}
}

func TestOpenDevice_CloseOnExec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_ctrl")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	h, err := openDevice(path)
	if err != nil {
		t.Fatalf("openDevice() = %v", err)
	}
	defer h.Close()

	fd := h.(*fdHandle).fd
	flags, _, errno := syscall.Syscall(syscall.SYS_FCNTL, uintptr(fd), syscall.F_GETFD, 0)
	if errno != 0 {
		t.Fatalf("fcntl: %v", errno)
	}
	if flags&syscall.FD_CLOEXEC == 0 {
		t.Error("descriptor opened without FD_CLOEXEC")
	}
}
