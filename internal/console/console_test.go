package console

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/starford/warpboard/internal/pages"
	"github.com/starford/warpboard/internal/testutil"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishAlertDeleted(id string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		f.events = append(f.events, "deleted:"+id)
		return
	}
	f.events = append(f.events, "failed:"+id)
}

func (f *fakePublisher) PublishSessionEnded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "session.ended")
}

func testEnv(t *testing.T, files map[string]string) (*Service, http.Handler, *fakePublisher) {
	t.Helper()
	d, err := pages.NewDir(testutil.PageDir(t, files))
	if err != nil {
		t.Fatal(err)
	}
	site, err := pages.NewSite(d, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	pub := &fakePublisher{}
	svc := NewService(site, pub, testutil.Logger())
	return svc, NewRouter(svc, nil), pub
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestServePages(t *testing.T) {
	_, h, _ := testEnv(t, map[string]string{
		"index.html":  "<p>home</p>",
		"alerts.html": "---\ntitle: Alerts\n---\n<p>alerts</p>",
	})

	w := serve(h, http.MethodGet, "/")
	if w.Code != http.StatusOK || w.Body.String() != "<p>home</p>" {
		t.Errorf("GET / = %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	w = serve(h, http.MethodGet, "/alerts")
	if w.Code != http.StatusOK || w.Body.String() != "<p>alerts</p>" {
		t.Errorf("GET /alerts = %d %q", w.Code, w.Body.String())
	}

	if w := serve(h, http.MethodGet, "/missing"); w.Code != http.StatusNotFound {
		t.Errorf("GET /missing = %d", w.Code)
	}
}

func TestServePageNotModified(t *testing.T) {
	_, h, _ := testEnv(t, map[string]string{"index.html": "<p>home</p>"})
	etag := serve(h, http.MethodGet, "/").Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestSessionCookieIssuedAndCleared(t *testing.T) {
	svc, h, pub := testEnv(t, map[string]string{"index.html": "x"})

	w := serve(h, http.MethodGet, "/")
	var issued *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			issued = c
		}
	}
	if issued == nil || issued.Value == "" {
		t.Fatal("session cookie not issued")
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(issued)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("logout status = %d", w.Code)
	}
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should clear the session cookie")
	}
	if diff := cmp.Diff([]string{"session.ended"}, pub.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if j := svc.Journal(); len(j) != 1 || j[0].Kind != ActionLogout {
		t.Errorf("journal = %+v", j)
	}
}

func TestDeleteAlert(t *testing.T) {
	svc, h, pub := testEnv(t, map[string]string{
		"index.html": "---\nfail_delete: [\"13\"]\n---\n<p>x</p>",
	})

	if w := serve(h, http.MethodDelete, "/alert/42"); w.Code != http.StatusNoContent {
		t.Errorf("delete 42 = %d", w.Code)
	}

	w := serve(h, http.MethodDelete, "/alert/13")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("delete 13 = %d, want 500", w.Code)
	}
	var body errResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil || !strings.Contains(body.Error, "delete failed") {
		t.Errorf("body = %+v, %v", body, err)
	}

	if diff := cmp.Diff([]string{"deleted:42", "failed:13"}, pub.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	w = serve(h, http.MethodGet, "/journal")
	var got struct {
		Actions []Action `json:"actions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := []Action{
		{Kind: ActionDelete, AlertID: "42", OK: true},
		{Kind: ActionDelete, AlertID: "13", OK: false},
	}
	if diff := cmp.Diff(want, got.Actions, cmpIgnoreTime); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
	if len(svc.Journal()) != 2 {
		t.Errorf("service journal = %d entries", len(svc.Journal()))
	}
}

func TestEventsNeedBroker(t *testing.T) {
	_, h, _ := testEnv(t, map[string]string{"index.html": "x"})
	if w := serve(h, http.MethodGet, "/events"); w.Code != http.StatusNotFound {
		t.Errorf("GET /events without broker = %d, want 404", w.Code)
	}
}

var cmpIgnoreTime = cmpopts.IgnoreFields(Action{}, "At")

func TestHandlerLogsThroughServiceLogger(t *testing.T) {
	d, err := pages.NewDir(testutil.PageDir(t, map[string]string{"index.html": "x"}))
	if err != nil {
		t.Fatal(err)
	}
	site, err := pages.NewSite(d, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := NewRouter(NewService(site, nil, logger), nil)

	if w := serve(h, http.MethodGet, "/missing"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"route":"/missing"`) {
		t.Errorf("service logger got %q", buf.String())
	}
}
