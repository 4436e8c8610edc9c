package api

import (
	"bufio"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/ledbridge/internal/events"
	"github.com/smazurov/ledbridge/internal/led"
)

func newTestHTTPServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts.EventBus == nil {
		opts.EventBus = events.New()
	}
	srv := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

func TestBasicAuth(t *testing.T) {
	srv := newTestHTTPServer(t, &Options{
		AuthUsername:      "admin",
		AuthPassword:      "secret",
		LED:               &fakeLED{status: "on 1 2 3"},
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "# metrics\n") }),
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "health is public", path: "/api/health", want: http.StatusOK},
		{name: "version is public", path: "/api/version", want: http.StatusOK},
		{name: "metrics is public", path: "/metrics", want: http.StatusOK},
		{name: "status without credentials", path: "/api/led/status", want: http.StatusUnauthorized},
		{name: "status with wrong password", path: "/api/led/status", header: "Basic " + basicAuth("admin", "nope"), want: http.StatusUnauthorized},
		{name: "status with bearer token", path: "/api/led/status", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "status with credentials", path: "/api/led/status", header: "Basic " + basicAuth("admin", "secret"), want: http.StatusOK},
		{name: "status with query credentials", path: "/api/led/status?auth=" + basicAuth("admin", "secret"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") != authRealm {
				t.Errorf("WWW-Authenticate = %q", resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestHTTPServer(t, &Options{LED: &fakeLED{}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/led/mode", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://panel.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Allow-Methods = %q", got)
	}
}

// readData returns the payload of the next SSE data line.
func readData(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return strings.TrimSpace(data)
		}
	}
}

func TestEventsStream(t *testing.T) {
	bus := events.New()
	srv := newTestHTTPServer(t, &Options{
		LED:      &fakeLED{status: "blink 128 250 750"},
		Clicks:   fixedClicks(3),
		EventBus: bus,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)

	// Without a monitor the stream starts from a live read.
	if data := readData(t, r); !strings.Contains(data, `"raw":"blink 128 250 750"`) || !strings.Contains(data, `"display_mode":"BLINK"`) {
		t.Errorf("initial state = %s", data)
	}
	if data := readData(t, r); !strings.Contains(data, `"count":3`) {
		t.Errorf("initial clicks = %s", data)
	}

	bus.Publish(events.LEDCommandEvent{Command: "0", Mode: string(led.ModeOff), Source: led.SourceNATS, Code: 1})
	if data := readData(t, r); !strings.Contains(data, `"source":"nats"`) {
		t.Errorf("command event = %s", data)
	}
}

func TestEventsStream_UsesMonitorSnapshot(t *testing.T) {
	snap := led.NewSnapshot("off 0 0 0", time.Now())
	s := &Server{options: &Options{
		LED:    &fakeLED{status: "on 1 1 1"},
		States: cachedState{snap: snap, ok: true},
	}}

	initial := s.initialEvents()
	if len(initial) != 1 {
		t.Fatalf("got %d initial events, want 1", len(initial))
	}
	ev, ok := initial[0].(events.LEDStateChangedEvent)
	if !ok || ev.Raw != "off 0 0 0" {
		t.Errorf("initial = %#v", initial[0])
	}
}

type cachedState struct {
	snap led.Snapshot
	ok   bool
}

func (c cachedState) Last() (led.Snapshot, bool) { return c.snap, c.ok }

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method string
		status int
		want   slog.Level
	}{
		{http.MethodGet, 200, slog.LevelDebug},
		{http.MethodOptions, 204, slog.LevelDebug},
		{http.MethodPost, 200, slog.LevelInfo},
		{http.MethodGet, 401, slog.LevelWarn},
		{http.MethodPost, 400, slog.LevelWarn},
		{http.MethodPost, 500, slog.LevelError},
	}

	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s, %d) = %v, want %v", tt.method, tt.status, got, tt.want)
		}
	}
}
