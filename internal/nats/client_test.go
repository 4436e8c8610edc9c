package nats

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/events"
	"github.com/smazurov/ledbridge/internal/led"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeCommander records requests and answers like a healthy device.
type fakeCommander struct {
	mu       sync.Mutex
	modes    []string
	commands []string
	sources  []string
}

func (f *fakeCommander) ApplyMode(source, name string) led.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, name)
	f.sources = append(f.sources, source)

	mode, err := led.ParseMode(name)
	if err != nil {
		return led.Result{Err: err}
	}
	cmd, _ := mode.Command()
	return led.Result{Mode: mode, Command: cmd, Written: len(cmd)}
}

func (f *fakeCommander) WriteCommand(source, command string) led.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	f.sources = append(f.sources, source)

	if command == "" {
		return led.Result{Err: device.ErrInvalidArgument}
	}
	return led.Result{Command: command, Written: len(command)}
}

func startServer(t *testing.T, port int) *Server {
	t.Helper()
	srv := NewServer(ServerOptions{Port: port, Name: "test-server", Logger: testLogger()})
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

func startBridge(t *testing.T, srv *Server, cmd Commander, bus *events.Bus) *Bridge {
	t.Helper()
	bridge := NewBridge(srv.ClientURL(), cmd, bus, testLogger())
	if err := bridge.Start(); err != nil {
		t.Fatalf("Failed to start bridge: %v", err)
	}
	t.Cleanup(bridge.Stop)
	return bridge
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(ServerOptions{Port: 14222, Name: "test-server", Logger: testLogger()})

	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	if err := srv.Start(); err == nil {
		t.Error("second Start() succeeded")
	}
	if !srv.IsRunning() {
		t.Error("Server should be running after Start()")
	}
	if srv.ClientURL() == "" {
		t.Error("ClientURL should not be empty")
	}

	srv.Stop()
	srv.Stop()

	if srv.IsRunning() {
		t.Error("Server should not be running after Stop()")
	}
	if srv.NumClients() != 0 {
		t.Error("NumClients should be 0 after Stop()")
	}
}

func TestDefaultServerOptions(t *testing.T) {
	opts := DefaultServerOptions()
	if opts.Port != 4222 || opts.Host != "127.0.0.1" || opts.Name != "ledbridge" {
		t.Errorf("DefaultServerOptions() = %+v", opts)
	}
	if got := NewServer(ServerOptions{}).ClientURL(); got != "nats://127.0.0.1:4222" {
		t.Errorf("ClientURL() before start = %q", got)
	}
}

func TestCommandClient_SetMode(t *testing.T) {
	srv := startServer(t, 14223)
	cmd := &fakeCommander{}
	startBridge(t, srv, cmd, nil)

	client, err := Dial(srv.ClientURL(), testLogger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	reply, err := client.SetMode(context.Background(), "blink")
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if reply.Mode != "BLINK" || reply.Command != "3" || reply.Code != 1 {
		t.Errorf("reply = %+v", reply)
	}

	reply, err = client.SetMode(context.Background(), "disco")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("SetMode(disco) error = %v, want ErrRejected", err)
	}
	if reply.Code >= 0 || reply.Error == "" {
		t.Errorf("reply = %+v, want negative code with error", reply)
	}

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	for _, s := range cmd.sources {
		if s != led.SourceNATS {
			t.Errorf("source = %q, want %q", s, led.SourceNATS)
		}
	}
}

func TestCommandClient_SendCommand(t *testing.T) {
	srv := startServer(t, 14224)
	startBridge(t, srv, &fakeCommander{}, nil)

	client, err := Dial(srv.ClientURL(), testLogger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	reply, err := client.SendCommand(context.Background(), "OFF")
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if reply.Written != 3 || reply.Code != 3 {
		t.Errorf("reply = %+v, want 3 bytes", reply)
	}

	reply, err = client.SendCommand(context.Background(), "")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("SendCommand(\"\") error = %v, want ErrRejected", err)
	}
	if reply.Code != device.Code(0, device.ErrInvalidArgument) {
		t.Errorf("Code = %d", reply.Code)
	}
}

func TestBridge_PlainTextPayloads(t *testing.T) {
	srv := startServer(t, 14225)
	cmd := &fakeCommander{}
	startBridge(t, srv, cmd, nil)

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	msg, err := nc.Request(SubjectControlMode, []byte(" breath\n"), time.Second)
	if err != nil {
		t.Fatalf("mode request: %v", err)
	}
	reply, err := Unmarshal[CommandReply](msg.Data)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Mode != "BREATH" || reply.Command != "4" {
		t.Errorf("reply = %+v", reply)
	}

	if _, err := nc.Request(SubjectControlCommand, []byte("1 "), time.Second); err != nil {
		t.Fatalf("command request: %v", err)
	}

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	if len(cmd.commands) != 1 || cmd.commands[0] != "1 " {
		t.Errorf("commands = %q, want raw payload", cmd.commands)
	}
}

func TestBridge_MalformedJSON(t *testing.T) {
	srv := startServer(t, 14226)
	cmd := &fakeCommander{}
	startBridge(t, srv, cmd, nil)

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	msg, err := nc.Request(SubjectControlMode, []byte(`{"mode":`), time.Second)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	reply, err := Unmarshal[CommandReply](msg.Data)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Code != -1 || reply.Error == "" {
		t.Errorf("reply = %+v", reply)
	}

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	if len(cmd.modes) != 0 {
		t.Errorf("commander called with %v", cmd.modes)
	}
}

func TestBridge_MirrorsBusEvents(t *testing.T) {
	srv := startServer(t, 14227)
	bus := events.New()
	bridge := startBridge(t, srv, &fakeCommander{}, bus)

	if !bridge.IsConnected() {
		t.Fatal("bridge not connected")
	}

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 10)
	sub, err := nc.ChanSubscribe(SubjectPrefix+".led.>", msgs)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		t.Fatal(err)
	}

	bus.Publish(events.LEDStateChangedEvent{Raw: "on 1 2 3", Mode: "on", DisplayMode: "ON", Level: 1})
	bus.Publish(events.PhysicalClicksEvent{Count: 9})
	bus.Publish(events.LEDCommandEvent{Command: "1", Source: led.SourceAPI, Code: 1})

	got := make(map[string][]byte)
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case m := <-msgs:
			got[m.Subject] = m.Data
		case <-timeout:
			t.Fatalf("received subjects %v, want 3", len(got))
		}
	}

	state, err := Unmarshal[StateMessage](got[SubjectLEDState])
	if err != nil || state.Raw != "on 1 2 3" || state.DisplayMode != "ON" {
		t.Errorf("state = %+v, %v", state, err)
	}
	clicks, err := Unmarshal[ClicksMessage](got[SubjectLEDClicks])
	if err != nil || clicks.Count != 9 {
		t.Errorf("clicks = %+v, %v", clicks, err)
	}
	command, err := Unmarshal[CommandMessage](got[SubjectLEDCommands])
	if err != nil || command.Source != led.SourceAPI || command.Code != 1 {
		t.Errorf("command = %+v, %v", command, err)
	}
}

func TestBridge_StopUnsubscribesBus(t *testing.T) {
	srv := startServer(t, 14228)
	bus := events.New()
	bridge := NewBridge(srv.ClientURL(), &fakeCommander{}, bus, testLogger())
	if err := bridge.Start(); err != nil {
		t.Fatal(err)
	}
	bridge.Stop()

	if bridge.IsConnected() {
		t.Error("bridge still connected after Stop()")
	}
	// Publishing after stop must not panic on the closed connection.
	bus.Publish(events.PhysicalClicksEvent{Count: 1})
	time.Sleep(20 * time.Millisecond)
}

func TestDial_NoServer(t *testing.T) {
	if _, err := Dial("nats://127.0.0.1:59999", testLogger()); err == nil {
		t.Fatal("Dial should fail with no server")
	}
}
