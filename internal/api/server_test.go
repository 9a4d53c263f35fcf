package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
)

type fakeSource struct {
	cols  domain.Collections
	err   error
	calls int
}

func (f *fakeSource) Snapshot() (domain.Collections, error) {
	f.calls++
	return f.cols, f.err
}

var fixedNow = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func fixture() domain.Collections {
	return domain.Collections{
		Tasks: []domain.Task{
			{ID: "t1", Name: "Report", Category: "work", Priority: 1, EstimatedTime: 60, Completed: true, CompletedAt: "2024-03-12T10:00:00Z"},
			{ID: "t2", Name: "Groceries", Category: "home", Priority: 3, EstimatedTime: 30, Completed: true, CompletedAt: "2024-03-13T18:00:00Z"},
		},
		Events: []domain.Event{
			{ID: "e1", Title: "Sync", Start: "2024-03-13T14:00:00Z", End: "2024-03-13T16:00:00Z", Color: "green"},
		},
		Habits: []domain.Habit{
			{ID: "h1", Name: "Reading", EstimatedTime: 20, CreatedAt: "2024-03-10", Completions: map[string]bool{"2024-03-11": true, "2024-03-12": true}},
		},
	}
}

func newTestServer(t *testing.T, src Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := New(src, Options{
		Location:  time.UTC,
		DailyGoal: 60,
		Now:       func() time.Time { return fixedNow },
	})
	return s.Router()
}

func get(t *testing.T, r http.Handler, url string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("GET %s: invalid JSON %q: %v", url, rec.Body.String(), err)
		}
	}
	return rec.Code
}

// ============================================================
// Health
// ============================================================

func TestHealth(t *testing.T) {
	r := newTestServer(t, &fakeSource{})
	var body map[string]any
	if code := get(t, r, "/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestServer(t, &fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc123" {
		t.Fatalf("request ID not echoed: %q", rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if len(rec.Header().Get("X-Request-ID")) != 8 {
		t.Fatalf("expected generated request ID, got %q", rec.Header().Get("X-Request-ID"))
	}
}

// ============================================================
// Series
// ============================================================

func TestSeries(t *testing.T) {
	r := newTestServer(t, &fakeSource{cols: fixture()})
	var body seriesResponse
	if code := get(t, r, "/api/series?granularity=day&domain=all", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Granularity != stats.Day || len(body.Points) != 10 {
		t.Fatalf("unexpected series: %s, %d points", body.Granularity, len(body.Points))
	}
	last := body.Points[9]
	if last.DateKey != "2024-03-13" || last.TotalTime != 150 {
		t.Fatalf("today = %+v", last)
	}
	if body.Points[8].TotalTime != 80 {
		t.Fatalf("yesterday = %d, want 80", body.Points[8].TotalTime)
	}
	if body.Max != 150 || body.Goal != 60 {
		t.Fatalf("max = %d, goal = %v", body.Max, body.Goal)
	}
	if body.Scale.Max != 180 || body.Scale.Step != 60 {
		t.Fatalf("scale = %+v", body.Scale)
	}
}

func TestSeriesDefaultsAndDomain(t *testing.T) {
	r := newTestServer(t, &fakeSource{cols: fixture()})
	var body seriesResponse
	get(t, r, "/api/series?domain=habits", &body)
	if body.Granularity != stats.Week || body.Domain != stats.Habits {
		t.Fatalf("selection = %s/%s", body.Granularity, body.Domain)
	}
	if got := body.Points[len(body.Points)-1].TotalTime; got != 40 {
		t.Fatalf("habit minutes this week = %d, want 40", got)
	}
}

func TestSeriesBadParams(t *testing.T) {
	r := newTestServer(t, &fakeSource{cols: fixture()})
	for _, url := range []string{
		"/api/series?granularity=fortnight",
		"/api/series?domain=sleep",
	} {
		var body map[string]string
		if code := get(t, r, url, &body); code != http.StatusBadRequest {
			t.Fatalf("GET %s: status = %d", url, code)
		}
		if body["error"] == "" {
			t.Fatalf("GET %s: missing error message", url)
		}
	}
}

func TestSeriesSnapshotFailure(t *testing.T) {
	r := newTestServer(t, &fakeSource{err: errors.New("disk on fire")})
	var body map[string]string
	if code := get(t, r, "/api/series", &body); code != http.StatusInternalServerError {
		t.Fatalf("status = %d", code)
	}
	if body["error"] != "failed to load data" {
		t.Fatalf("error should not leak internals: %q", body["error"])
	}
}

// ============================================================
// Rolling / period / scale
// ============================================================

func TestRolling(t *testing.T) {
	r := newTestServer(t, &fakeSource{cols: fixture()})
	var body rollingResponse
	if code := get(t, r, "/api/rolling?range=week", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.TotalTime != 250 || body.TasksTime != 90 || body.EventsTime != 120 || body.HabitsTime != 40 {
		t.Fatalf("unexpected rolling: %+v", body.RollingSummary)
	}
	if len(body.Habits) != 1 || body.Habits[0].RelevantDays != 4 || body.AverageRate != 0.5 {
		t.Fatalf("habit rate = %+v, avg %v", body.Habits, body.AverageRate)
	}
	if len(body.Breakdown.Categories) != 2 || body.Breakdown.Categories[0].Key != "work" {
		t.Fatalf("categories = %+v", body.Breakdown.Categories)
	}
}

func TestRollingBadRange(t *testing.T) {
	r := newTestServer(t, &fakeSource{})
	if code := get(t, r, "/api/rolling?range=decade", nil); code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
}

func TestPeriod(t *testing.T) {
	r := newTestServer(t, &fakeSource{cols: fixture()})
	var body periodResponse
	if code := get(t, r, "/api/period?start=2024-03-12&end=2024-03-12", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Details.TotalTime != 80 || len(body.Details.CompletedTasks) != 1 {
		t.Fatalf("details = %+v", body.Details)
	}
	if !body.Window.Start.Equal(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window start = %v", body.Window.Start)
	}
	if len(body.Shares) != 4 {
		t.Fatalf("shares = %+v", body.Shares)
	}
}

func TestPeriodBadParams(t *testing.T) {
	src := &fakeSource{cols: fixture()}
	r := newTestServer(t, src)
	for _, url := range []string{
		"/api/period?end=2024-03-12",
		"/api/period?start=2024-03-12",
		"/api/period?start=12/03/2024&end=2024-03-12",
		"/api/period?start=2024-03-12T10:00:00Z&end=2024-03-12",
		"/api/period?start=2024-03-13&end=2024-03-12",
	} {
		if code := get(t, r, url, nil); code != http.StatusBadRequest {
			t.Fatalf("GET %s: status = %d", url, code)
		}
	}
	if src.calls != 0 {
		t.Fatal("bad requests must not load a snapshot")
	}
}

func TestScale(t *testing.T) {
	r := newTestServer(t, &fakeSource{})
	var s stats.YScale
	if code := get(t, r, "/api/scale?max=100&ref=0", &s); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if s.Max != 120 || s.Step != 30 || len(s.Ticks) != 5 {
		t.Fatalf("scale = %+v", s)
	}

	get(t, r, "/api/scale?max=10", &s)
	if s.Max != 90 {
		t.Fatalf("default ref should be the daily goal, got max %v", s.Max)
	}

	for _, url := range []string{"/api/scale?max=abc", "/api/scale?max=-1", "/api/scale?ref=NaN"} {
		if code := get(t, r, url, nil); code != http.StatusBadRequest {
			t.Fatalf("GET %s: status = %d", url, code)
		}
	}
}

func TestMemoReusedAcrossRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	memo := stats.NewMemo(0)
	s := New(&fakeSource{cols: fixture()}, Options{Location: time.UTC, Now: func() time.Time { return fixedNow }, Memo: memo})
	r := s.Router()
	get(t, r, "/api/series?granularity=month", nil)
	get(t, r, "/api/series?granularity=month", nil)
	if hits, misses := memo.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	gin.SetMode(gin.TestMode)
	s := New(&fakeSource{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
