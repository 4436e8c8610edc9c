package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/nats"
)

// newDeviceFile creates a regular file standing in for the device node.
func newDeviceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "led_ctrl")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSendLocal(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		raw       bool
		wantCode  int
		wantBytes string
	}{
		{name: "mode", arg: "blink", wantCode: 1, wantBytes: "3"},
		{name: "raw command", arg: "OFF", raw: true, wantCode: 3, wantBytes: "OFF"},
		{name: "unknown mode", arg: "disco", wantCode: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := newDeviceFile(t, "")
			var stdout, stderr bytes.Buffer

			code := sendLocal(&stdout, &stderr, path, tt.arg, tt.raw)
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d (stderr %q)", code, tt.wantCode, stderr.String())
			}
			if got := strings.TrimSpace(stdout.String()); got != strconv.Itoa(tt.wantCode) {
				t.Errorf("stdout = %q", got)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.wantBytes {
				t.Errorf("device received %q, want %q", data, tt.wantBytes)
			}
		})
	}
}

func TestSendLocal_MissingDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	var stdout, stderr bytes.Buffer

	code := sendLocal(&stdout, &stderr, path, "OFF", true)
	if code >= 0 {
		t.Fatalf("code = %d, want negative", code)
	}
	if stderr.Len() == 0 {
		t.Error("expected an error on stderr")
	}
}

type fakeRemote struct {
	reply nats.CommandReply
	err   error
	mode  string
	cmd   string
}

func (f *fakeRemote) SetMode(_ context.Context, mode string) (nats.CommandReply, error) {
	f.mode = mode
	return f.reply, f.err
}

func (f *fakeRemote) SendCommand(_ context.Context, command string) (nats.CommandReply, error) {
	f.cmd = command
	return f.reply, f.err
}

func TestWriteRemote(t *testing.T) {
	t.Run("mode", func(t *testing.T) {
		remote := &fakeRemote{reply: nats.CommandReply{Code: 1}}
		var stdout, stderr bytes.Buffer

		if code := writeRemote(context.Background(), &stdout, &stderr, remote, "ON", false); code != 1 {
			t.Errorf("code = %d, want 1", code)
		}
		if remote.mode != "ON" || remote.cmd != "" {
			t.Errorf("remote got mode %q cmd %q", remote.mode, remote.cmd)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		remote := &fakeRemote{
			reply: nats.CommandReply{Code: -2, Error: "no such file or directory"},
			err:   nats.ErrRejected,
		}
		var stdout, stderr bytes.Buffer

		if code := writeRemote(context.Background(), &stdout, &stderr, remote, "1", true); code != -2 {
			t.Errorf("code = %d, want -2", code)
		}
		if remote.cmd != "1" {
			t.Errorf("remote cmd = %q", remote.cmd)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		remote := &fakeRemote{err: errors.New("no responders")}
		var stdout, stderr bytes.Buffer

		if code := writeRemote(context.Background(), &stdout, &stderr, remote, "ON", false); code != -1 {
			t.Errorf("code = %d, want -1", code)
		}
		if strings.TrimSpace(stdout.String()) != "-1" {
			t.Errorf("stdout = %q", stdout.String())
		}
	})
}

func TestPrintStatus(t *testing.T) {
	t.Run("raw", func(t *testing.T) {
		path := newDeviceFile(t, "on 1 2 3")
		channel := device.NewChannel(path)
		defer channel.Close()

		var out bytes.Buffer
		printStatus(&out, channel, false)
		if out.String() != "on 1 2 3\n" {
			t.Errorf("out = %q", out.String())
		}
	})

	t.Run("parsed fallback", func(t *testing.T) {
		channel := device.NewChannel(filepath.Join(t.TempDir(), "missing"))

		var out bytes.Buffer
		printStatus(&out, channel, true)
		for _, want := range []string{"mode:      UNKNOWN", "level:     0", "fallback:  true"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})
}
