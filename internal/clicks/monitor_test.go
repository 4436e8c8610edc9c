package clicks

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smazurov/ledbridge/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func writeCounter(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"plain", "17\n", 17, false},
		{"labelled", "clicks: 42\n", 42, false},
		{"first line without digits", "coordinator v\nclicks=9 since=100\n", 9, false},
		{"first match on line", "a12b34\n", 12, false},
		{"empty", "", 0, true},
		{"no digits", "none\nat all\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonitor_KeepsLastValueOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinator")
	mon := NewMonitor(path, time.Hour, nil, testLogger())

	if got := mon.Poll(); got != 0 {
		t.Errorf("missing file: Poll() = %d, want 0", got)
	}

	writeCounter(t, path, "clicks 5\n")
	if got := mon.Poll(); got != 5 {
		t.Errorf("Poll() = %d, want 5", got)
	}

	writeCounter(t, path, "garbage\n")
	if got := mon.Poll(); got != 5 {
		t.Errorf("unparseable: Poll() = %d, want 5", got)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if got := mon.Poll(); got != 5 {
		t.Errorf("removed: Poll() = %d, want 5", got)
	}
	if mon.Count() != 5 {
		t.Errorf("Count() = %d, want 5", mon.Count())
	}
}

func TestMonitor_PublishesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinator")
	writeCounter(t, path, "3\n")

	eventBus := events.New()
	received := make(chan events.PhysicalClicksEvent, 10)
	defer eventBus.Subscribe(func(e events.PhysicalClicksEvent) { received <- e })()

	var gauge []int
	mon := NewMonitor(path, time.Hour, eventBus, testLogger(), WithOnChange(func(n int) {
		gauge = append(gauge, n)
	}))

	mon.Poll()
	mon.Poll()
	writeCounter(t, path, "4\n")
	mon.Poll()

	for _, want := range []int{3, 4} {
		select {
		case e := <-received:
			if e.Count != want {
				t.Errorf("event count = %d, want %d", e.Count, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no event for %d", want)
		}
	}

	select {
	case e := <-received:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(20 * time.Millisecond):
	}

	if len(gauge) != 2 || gauge[0] != 3 || gauge[1] != 4 {
		t.Errorf("onChange calls = %v, want [3 4]", gauge)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinator")
	writeCounter(t, path, "8\n")

	mon := NewMonitor(path, 5*time.Millisecond, nil, testLogger())
	mon.Start(context.Background())
	mon.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for mon.Count() != 8 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	mon.Stop()
	mon.Stop()

	if mon.Count() != 8 {
		t.Errorf("Count() = %d, want 8", mon.Count())
	}
}

func TestNewMonitor_Defaults(t *testing.T) {
	mon := NewMonitor("", 0, nil, nil)
	if mon.path != DefaultPath || mon.interval != DefaultInterval {
		t.Errorf("defaults = %q %v", mon.path, mon.interval)
	}
}
