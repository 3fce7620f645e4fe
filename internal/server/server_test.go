package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/SmitUplenchwar2687/logmon/internal/alert"
	"github.com/SmitUplenchwar2687/logmon/internal/clock"
	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/notify"
	"github.com/SmitUplenchwar2687/logmon/internal/recorder"
	"github.com/SmitUplenchwar2687/logmon/internal/stats"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testInfo() Info {
	return Info{File: "/var/log/access.log", Started: epoch, Config: monitor.DefaultConfig()}
}

func testResult() monitor.Result {
	return monitor.Result{
		Snapshot: stats.Snapshot{
			Time:          epoch.Add(10 * time.Second),
			TotalRequests: 50,
			TotalBytes:    2048,
			ShortHits:     5,
			LongHits:      50,
			Sections:      []stats.SectionCount{{Section: "", Hits: 1}, {Section: "api", Hits: 4}},
			Statuses:      []stats.StatusCount{{Class: "2xx", Hits: 5}},
		},
	}
}

func startTestServer(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := New(ln.Addr().String(), testInfo(), opts...)
	go srv.StartOnListener(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv, "http://" + ln.Addr().String()
}

func TestNewView(t *testing.T) {
	a := alert.Alert{ID: uuid.New(), TriggeredAt: epoch, Hits: 1300}
	res := testResult()
	res.Alert = &a

	v := NewView(res, testInfo(), epoch.Add(10*time.Second))

	if v.Runtime != "00:00:10" {
		t.Errorf("Runtime = %q, want 00:00:10", v.Runtime)
	}
	if v.AverageHits != 5 {
		t.Errorf("AverageHits = %v, want 5", v.AverageHits)
	}
	if v.TotalKB != 2 {
		t.Errorf("TotalKB = %v, want 2", v.TotalKB)
	}
	if v.Capacity != 1200 {
		t.Errorf("Capacity = %v, want 1200", v.Capacity)
	}
	if v.Sections[0].Section != "/" {
		t.Errorf("root section rendered as %q, want /", v.Sections[0].Section)
	}
	if res.Snapshot.Sections[0].Section != "" {
		t.Error("NewView must not modify the snapshot")
	}
	if v.Alert == nil || !v.Alert.Active || v.Alert.Hits != 1300 {
		t.Errorf("Alert = %+v, want active with 1300 hits", v.Alert)
	}
}

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59*time.Second + 900*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{30 * time.Hour, "30:00:00"},
	}
	for _, tt := range tests {
		if got := FormatRuntime(tt.d); got != tt.want {
			t.Errorf("FormatRuntime(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAverageHits(t *testing.T) {
	if got := AverageHits(7, 500*time.Millisecond); got != 7 {
		t.Errorf("AverageHits in first second = %v, want 7", got)
	}
	if got := AverageHits(30, 10*time.Second); got != 3 {
		t.Errorf("AverageHits = %v, want 3", got)
	}
}

func TestServer_RootRedirects(t *testing.T) {
	srv := New(":0", testInfo())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/" {
		t.Errorf("Location = %q, want /dashboard/", loc)
	}
}

func TestServer_Dashboard(t *testing.T) {
	srv := New(":0", testInfo())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<title>logmon</title>") {
		t.Error("dashboard page not served")
	}
}

func TestServer_Health(t *testing.T) {
	srv := New(":0", testInfo(), WithClock(clock.NewVirtualClock(epoch)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if body["time"] != "2024-01-01T00:00:00Z" {
		t.Errorf("time = %q, want virtual clock time", body["time"])
	}
}

func TestServer_StatsBeforeAndAfterPublish(t *testing.T) {
	vc := clock.NewVirtualClock(epoch.Add(10 * time.Second))
	srv := New(":0", testInfo(), WithClock(vc))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before publish = %d, want 503", rec.Code)
	}

	srv.Publish(testResult())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status after publish = %d, want 200", rec.Code)
	}
	var v View
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.TotalRequests != 50 || v.ShortHits != 5 {
		t.Errorf("view = %+v", v)
	}
}

func TestServer_Alerts(t *testing.T) {
	history := recorder.New(nil)
	recoveredAt := epoch.Add(time.Minute)
	history.Record(notify.Event{ID: "a", Kind: notify.KindTriggered, TriggeredAt: epoch, Hits: 1300})
	history.Record(notify.Event{ID: "a", Kind: notify.KindRecovered, TriggeredAt: epoch, RecoveredAt: &recoveredAt, Hits: 1300})

	srv := New(":0", testInfo(), WithRecorder(history))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))

	var body struct {
		Episodes []recorder.Episode `json:"episodes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Episodes) != 1 || body.Episodes[0].RecoveredAt == nil {
		t.Errorf("episodes = %+v, want one recovered episode", body.Episodes)
	}
}

func TestServer_AlertsWithoutRecorder(t *testing.T) {
	srv := New(":0", testInfo())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	if !strings.Contains(rec.Body.String(), `"episodes":[]`) {
		t.Errorf("body = %s, want empty episode list", rec.Body.String())
	}
}

func TestServer_PublishWithProcessStats(t *testing.T) {
	ps, err := NewProcessSampler()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	srv := New(":0", testInfo(), WithProcessSampler(ps))
	v := srv.Publish(testResult())
	if v.Process == nil || v.Process.RSSBytes == 0 {
		t.Errorf("Process = %+v, want non-zero RSS", v.Process)
	}
}

func TestServer_WebSocketReceivesViews(t *testing.T) {
	srv, baseURL := startTestServer(t, WithClock(clock.NewVirtualClock(epoch.Add(5*time.Second))))

	// The first view is delivered to clients that connect later.
	srv.Publish(testResult())

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var v View
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&v); err != nil {
		t.Fatalf("reading initial view: %v", err)
	}
	if v.Runtime != "00:00:05" {
		t.Errorf("initial view runtime = %q, want 00:00:05", v.Runtime)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	res := testResult()
	res.Snapshot.TotalRequests = 99
	srv.Publish(res)

	if err := conn.ReadJSON(&v); err != nil {
		t.Fatalf("reading broadcast view: %v", err)
	}
	if v.TotalRequests != 99 {
		t.Errorf("broadcast TotalRequests = %d, want 99", v.TotalRequests)
	}
}

func TestHub_BroadcastDoesNotWaitOnSlowClient(t *testing.T) {
	h := NewHub(nil)

	// A client that never drains its queue.
	stalled := &client{send: make(chan []byte, 1)}
	stalled.send <- []byte(`"queued"`)
	h.clients[stalled] = struct{}{}

	done := make(chan struct{})
	go func() {
		h.Broadcast(map[string]int{"n": 1})
		h.Broadcast(map[string]int{"n": 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a client with a full queue")
	}

	if got := string(<-stalled.send); got != `"queued"` {
		t.Errorf("queued message = %s, want the original one", got)
	}
	if got := string(h.last); got != `{"n":2}` {
		t.Errorf("last = %s, want {\"n\":2}", got)
	}
}
