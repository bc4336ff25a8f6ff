package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/kompas/internal/bookmark"
	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/feed"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/index"
	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
	"github.com/MrSnakeDoc/kompas/internal/viewmodel"
)

var testLog = logger.New("error", false)

type feedStatus struct {
	last time.Time
	err  error
}

func (f feedStatus) Status() (time.Time, error) { return f.last, f.err }

type downStore struct{ *bookmark.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newTestDeps(t *testing.T) deps.Deps {
	t.Helper()

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	b := broadcast.New(broadcast.DispatchFunc(func(fn func()) { fn() }), testLog, rec)
	store := bookmark.New(index.NewMemoryIndex(), b, testLog, rec, time.Second)

	list := viewmodel.NewBookmarkList(store, b, testLog)
	home := viewmodel.NewHome(store, b, testLog)
	t.Cleanup(func() {
		list.Close()
		home.Close()
		store.Close()
	})

	return deps.Deps{
		Logger:          testLog,
		StartTime:       time.Now(),
		Version:         "test",
		RateLimitPerMin: 60,
		RateLimitBurst:  100,
		StoreBackend:    "memory",
		Store:           store,
		Changes:         b,
		BookmarkList:    list,
		Home:            home,
		Feed:            feedStatus{last: time.Now()},
		ReloadTrigger:   make(chan struct{}, 1),
		Gatherer:        reg,
		KeepAlive:       time.Hour,
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type bookmarkState struct {
	Identifier string `json:"identifier"`
	Bookmarked bool   `json:"bookmarked"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBookmarkEndpoints(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(testLog, d)

	rec := do(t, h, http.MethodPost, "/bookmarks",
		`{"title":"Breaking news","published_time":"10:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /bookmarks status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[bookmarkState](t, rec); got.Identifier != "Breaking_news_10:00" || !got.Bookmarked {
		t.Errorf("POST /bookmarks = %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/bookmarks/Breaking_news_10:00", "")
	if got := decode[bookmarkState](t, rec); !got.Bookmarked {
		t.Errorf("GET /bookmarks/{id} = %+v, want bookmarked", got)
	}

	rec = do(t, h, http.MethodGet, "/bookmarks", "")
	list := decode[[]domain.Bookmark](t, rec)
	if len(list) != 1 || list[0].Title != "Breaking news" {
		t.Errorf("GET /bookmarks = %+v", list)
	}

	rec = do(t, h, http.MethodDelete, "/bookmarks/Breaking_news_10:00", "")
	if got := decode[bookmarkState](t, rec); got.Bookmarked {
		t.Errorf("DELETE /bookmarks/{id} = %+v, want not bookmarked", got)
	}

	rec = do(t, h, http.MethodGet, "/bookmarks", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("GET /bookmarks after delete = %s, want []", body)
	}

	if items := d.BookmarkList.Items(); len(items) != 0 {
		t.Errorf("bookmark list view = %v, want empty", items)
	}
}

func TestBookmarkEndpointsEscapedIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		article domain.Article
		path    string
		wantID  string
	}{
		{"escaped slash and space", domain.Article{ID: "a/b c"}, "a%2Fb%20c", "a/b c"},
		{"percent in derived id", domain.Article{Title: "Diskon 50%", PublishedTime: "1"}, "Diskon_50%25_1", "Diskon_50%_1"},
		{"percent next to escaped slash", domain.Article{ID: "a/b%"}, "a%2Fb%25", "a/b%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps(t)
			h := NewRouter(testLog, d)
			d.Store.Add(tt.article)

			rec := do(t, h, http.MethodGet, "/bookmarks/"+tt.path, "")
			if got := decode[bookmarkState](t, rec); got.Identifier != tt.wantID || !got.Bookmarked {
				t.Errorf("GET = %d %+v, want %q bookmarked", rec.Code, got, tt.wantID)
			}

			rec = do(t, h, http.MethodDelete, "/bookmarks/"+tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("DELETE status = %d, body %s", rec.Code, rec.Body.String())
			}
			if d.Store.IsBookmarked(tt.wantID) {
				t.Errorf("%q still bookmarked after DELETE", tt.wantID)
			}
		})
	}
}

func TestAddBookmarkRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"no id and no title", `{"description":"orphan"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps(t)
			rec := do(t, NewRouter(testLog, d), http.MethodPost, "/bookmarks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if n := d.Store.Count(); n != 0 {
				t.Errorf("Count() = %d, want 0", n)
			}
		})
	}
}

func TestBookmarkWritesAreRateLimited(t *testing.T) {
	d := newTestDeps(t)
	d.RateLimitBurst = 2
	d.RateLimitPerMin = 1
	h := NewRouter(testLog, d)

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodDelete, "/bookmarks/x", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodDelete, "/bookmarks/x", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// reads are not limited
	if rec := do(t, h, http.MethodGet, "/bookmarks", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /bookmarks status = %d", rec.Code)
	}
}

func TestHomeEndpoint(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(testLog, d)

	d.Home.SetSections([]feed.HomeSection{{
		Type:  feed.SectionArticles,
		Title: "Latest",
		Data:  &feed.SectionData{Articles: []domain.Article{{ID: "a1", Title: "One"}, {ID: "a2", Title: "Two"}}},
	}})
	d.Store.Add(domain.Article{ID: "a2"})

	type homeResponse struct {
		Rows  []viewmodel.Row `json:"rows"`
		Error string          `json:"error"`
	}

	got := decode[homeResponse](t, do(t, h, http.MethodGet, "/home", ""))
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %+v", got.Rows)
	}
	if got.Rows[0].Bookmarked || !got.Rows[1].Bookmarked {
		t.Errorf("bookmark flags = %v, %v; want false, true", got.Rows[0].Bookmarked, got.Rows[1].Bookmarked)
	}

	d.Home.SetError(errors.New("feed down"))
	got = decode[homeResponse](t, do(t, h, http.MethodGet, "/home", ""))
	if len(got.Rows) != 2 || got.Error != "feed down" {
		t.Errorf("after error rows = %d, error = %q", len(got.Rows), got.Error)
	}
}

func TestOpsEndpoints(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(testLog, d)

	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}

	d.Store.Add(domain.Article{ID: "counted"})
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "kompas_") {
		t.Errorf("metrics status = %d, body lacks kompas_ series", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/reload", ""); rec.Code != http.StatusAccepted {
		t.Errorf("first reload status = %d, want 202", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/reload", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("pending reload status = %d, want 429", rec.Code)
	}
}

func TestReadyzReportsBackendDown(t *testing.T) {
	d := newTestDeps(t)
	d.Store = downStore{d.Store.(*bookmark.Store)}

	rec := do(t, NewRouter(testLog, d), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}
}

func TestInfraMode(t *testing.T) {
	type infraResponse struct {
		Mode string `json:"mode"`
	}

	tests := []struct {
		name   string
		mutate func(d *deps.Deps)
		want   string
	}{
		{"all good", func(d *deps.Deps) {}, "optimal"},
		{"feed failing", func(d *deps.Deps) {
			d.Feed = feedStatus{last: time.Now(), err: errors.New("timeout")}
		}, "degraded"},
		{"feed never loaded", func(d *deps.Deps) { d.Feed = feedStatus{} }, "degraded"},
		{"store down", func(d *deps.Deps) {
			d.Store = downStore{d.Store.(*bookmark.Store)}
		}, "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps(t)
			tt.mutate(&d)
			got := decode[infraResponse](t, do(t, NewRouter(testLog, d), http.MethodGet, "/infra", ""))
			if got.Mode != tt.want {
				t.Errorf("mode = %q, want %q", got.Mode, tt.want)
			}
		})
	}
}

func TestOpsEndpointsRestricted(t *testing.T) {
	d := newTestDeps(t)
	d.AllowedCIDRS = []string{"10.0.0.0/8"}
	h := NewRouter(testLog, d)

	// httptest requests come from 192.0.2.1
	if rec := do(t, h, http.MethodGet, "/infra", ""); rec.Code != http.StatusForbidden {
		t.Errorf("infra status = %d, want 403", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestEventsStreamsChanges(t *testing.T) {
	d := newTestDeps(t)
	srv := httptest.NewServer(NewRouter(testLog, d))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	if !lines.Scan() || lines.Text() != "retry: 3000" {
		t.Fatalf("first line = %q", lines.Text())
	}

	d.Store.Add(domain.Article{ID: "live"})

	for lines.Scan() {
		if lines.Text() == "event: bookmarks-changed" {
			return
		}
	}
	t.Fatalf("stream ended without a change event: %v", lines.Err())
}
