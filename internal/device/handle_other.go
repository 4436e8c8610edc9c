//go:build !linux

package device

import "os"

// openDevice falls back to os.OpenFile off Linux, where the driver does not
// exist. The runtime already opens files close-on-exec.
func openDevice(path string) (Handle, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}
