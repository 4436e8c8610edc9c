// Package device owns the handle to the LED controller's character device.
//
// A Channel lazily opens the device node on first use and keeps that single
// descriptor for the life of the process. Commands are written to it as raw
// bytes and the status line is read back from offset 0. Reads never fail
// outward: when the device cannot be reached the fallback status is returned.
package device

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/smazurov/ledbridge/internal/logging"
)

const (
	// DefaultPath is the character device exposed by the LED driver.
	DefaultPath = "/dev/led_ctrl"

	// MaxStatusLen is the largest status line read from the device.
	MaxStatusLen = 255

	// FallbackStatus is returned when the device cannot be opened or read.
	// Callers must treat it as "no data", not as a real reading.
	FallbackStatus = "unknown 0 0 0"
)

// Handle is an open device node.
type Handle interface {
	io.ReadWriteSeeker
	io.Closer
}

// Opener opens path read-write without leaking the descriptor across exec.
type Opener func(path string) (Handle, error)

// Observer receives device lifecycle notifications.
// Calls are made with the channel lock held and must not block.
type Observer interface {
	DeviceOpened(err error)
	DeviceReopened()
	CommandWritten(n int, err error)
	StatusRead(fallback bool)
}

// Channel mediates all access to the device node.
type Channel struct {
	path     string
	open     Opener
	logger   logging.Logger
	observer Observer

	mu     sync.Mutex
	handle Handle // nil while unopened
}

// Option configures a Channel.
type Option func(*Channel)

// WithOpener replaces the system opener, mostly for tests.
func WithOpener(open Opener) Option {
	return func(c *Channel) {
		c.open = open
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(logger logging.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer for open/read/write outcomes.
func WithObserver(observer Observer) Option {
	return func(c *Channel) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// NewChannel creates a channel for path. Nothing is opened until first use.
func NewChannel(path string, opts ...Option) *Channel {
	if path == "" {
		path = DefaultPath
	}

	c := &Channel{
		path:     path,
		open:     openDevice,
		logger:   logging.GetLogger("device"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the device path this channel opens.
func (c *Channel) Path() string {
	return c.path
}

// Send writes command to the device with a single write call.
// It returns the byte count reported by the driver. A short write is not
// detected or retried.
func (c *Channel) Send(command string) (int, error) {
	if !marshalable(command) {
		return 0, ErrInvalidArgument
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h, err := c.ensureOpen()
	if err != nil {
		c.logger.Error("Failed to open device", "path", c.path, "error", err)
		return 0, newOSError("open", c.path, err)
	}

	n, err := h.Write([]byte(command))
	c.observer.CommandWritten(n, err)
	if err != nil {
		c.logger.Error("Write failed", "path", c.path, "error", err)
		return 0, newOSError("write", c.path, err)
	}

	return n, nil
}

// ReadStatus returns the current status line, or FallbackStatus when the
// device cannot be opened or returns nothing.
func (c *Channel) ReadStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, err := c.ensureOpen()
	if err != nil {
		c.logger.Error("Failed to open device", "path", c.path, "error", err)
		return c.fallback()
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		c.logger.Warn("Seek failed, reopening", "path", c.path, "error", err)
		_ = h.Close()
		c.handle = nil
		c.observer.DeviceReopened()

		h, err = c.ensureOpen()
		if err != nil {
			c.logger.Error("Reopen after seek failure failed", "path", c.path, "error", err)
			return c.fallback()
		}
		// The fresh handle is read as-is; the seek is not repeated.
	}

	buf := make([]byte, MaxStatusLen)
	n, err := h.Read(buf)
	if n <= 0 {
		c.logger.Error("Read failed", "path", c.path, "bytes_read", n, "error", err)
		return c.fallback()
	}

	c.observer.StatusRead(false)
	return cString(buf[:n])
}

// IsOpen reports whether a handle is currently cached.
func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// Close releases the cached handle. The next Send or ReadStatus reopens it.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	return err
}

// ensureOpen returns the cached handle, opening the device if needed.
// Must be called with c.mu held.
func (c *Channel) ensureOpen() (Handle, error) {
	if c.handle != nil {
		return c.handle, nil
	}

	h, err := c.open(c.path)
	c.observer.DeviceOpened(err)
	if err != nil {
		return nil, err
	}
	c.handle = h
	return h, nil
}

func (c *Channel) fallback() string {
	c.observer.StatusRead(true)
	return FallbackStatus
}

// marshalable reports whether command survives conversion to a C string.
func marshalable(command string) bool {
	return utf8.ValidString(command) && !strings.ContainsRune(command, 0)
}

// cString cuts b at the first NUL byte.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

type nopObserver struct{}

func (nopObserver) DeviceOpened(error) {}

func (nopObserver) DeviceReopened() {}

func (nopObserver) CommandWritten(int, error) {}

func (nopObserver) StatusRead(bool) {}
