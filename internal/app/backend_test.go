package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeBackend はギフトカードAPIの偽サーバー。
// パスごとにdataを返し、expiredがtrueの間は認証付きのパスにセッション期限切れを返す。
type fakeBackend struct {
	mu      sync.Mutex
	data    map[string]any
	expired bool
	calls   map[string]int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{
		data: map[string]any{
			"/user/login": map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"id": "u-1", "email": "a@example.com"},
			},
			"/user/current":      map[string]any{"id": "u-1", "email": "a@example.com"},
			"/user/logout":       nil,
			"/order/list":        []map[string]any{{"id": "o-1"}, {"id": "o-2"}},
			"/wallet/balance":    map[string]any{"balance": 10.5, "currency": "USD"},
			"/common/countries":  []map[string]any{{"code": "NG", "name": "Nigeria"}},
			"/common/app-config": map[string]any{"latestVersion": "1.0.0"},
			"/track/first-open":  nil,
		},
		calls: make(map[string]int),
	}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) setExpired(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = v
}

func (b *fakeBackend) callCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	data, ok := b.data[r.URL.Path]
	expired := b.expired
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case !ok:
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "Not found"})
	case expired && r.URL.Path != "/user/login" && r.URL.Path != "/common/countries" && r.URL.Path != "/common/app-config":
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "Session expired, please log in again"})
	default:
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data, "msg": ""})
	}
}
