package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/giftdesk/internal/auth"
	"github.com/hitoshi/giftdesk/internal/config"
	"github.com/hitoshi/giftdesk/internal/kvstore"
	"github.com/hitoshi/giftdesk/internal/middleware"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:        baseURL,
		AppVersion:        "1.0.0",
		AppPlatform:       "android",
		PageSize:          2,
		StoreBackend:      config.StoreMemory,
		CORSAllowedOrigin: "http://localhost:3000",
	}
}

func newTestComponents(t *testing.T, baseURL string, kv kvstore.Store) *components {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	c, err := wire(context.Background(), testConfig(baseURL), kv, log)
	if err != nil {
		t.Fatalf("wireがエラーを返した: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(middleware.ClientHeaderName, "test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestWire_SessionExpiryClearsEverything はログイン→一覧取得→セッション期限切れの流れで
// 認証状態・永続化セッション・一覧・残高がまとめてクリアされることを検証する。
func TestWire_SessionExpiryClearsEverything(t *testing.T) {
	backend, srv := newFakeBackend(t)
	kv := kvstore.NewMemoryStore()
	c := newTestComponents(t, srv.URL, kv)
	c.boot.Run(context.Background())
	c.boot.Wait()

	if w := post(t, c.router, "/api/session/login", `{"email":"a@example.com","password":"pw"}`); w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	if c.auth.Token() != "tok-1" {
		t.Fatalf("token = %q, want tok-1", c.auth.Token())
	}
	if _, ok, _ := kv.Get(context.Background(), auth.SessionKey); !ok {
		t.Fatal("ログイン後にセッションが永続化されていない")
	}

	w := post(t, c.router, "/api/lists/orders/fetch?refresh=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", w.Code, w.Body.String())
	}
	var st pager.State[model.Order]
	json.Unmarshal(w.Body.Bytes(), &st)
	if len(st.Items) != 2 || !st.HasMore {
		t.Fatalf("fetch後の状態 = %+v", st)
	}
	if w := get(t, c.router, "/api/wallet/balance"); w.Code != http.StatusOK {
		t.Fatalf("balance status = %d", w.Code)
	}

	backend.setExpired(true)

	w = post(t, c.router, "/api/lists/orders/more", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("more status = %d, want 401", w.Code)
	}
	var body middleware.ErrorResponseBody
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != model.ErrCodeSessionExpired {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeSessionExpired)
	}

	if st := c.auth.State(); st.IsAuthenticated || st.User != nil || c.auth.Token() != "" {
		t.Errorf("期限切れ後も認証状態が残っている: %+v", st)
	}
	if _, ok, _ := kv.Get(context.Background(), auth.SessionKey); ok {
		t.Error("期限切れ後も永続化セッションが残っている")
	}
	list, _ := c.lists.Get("orders")
	if got := list.View().(pager.State[model.Order]); len(got.Items) != 0 {
		t.Errorf("一覧がリセットされていない: %+v", got)
	}
	if c.balance.Snapshot().Balance != nil {
		t.Error("残高がリセットされていない")
	}

	if w := get(t, c.router, "/api/lists/orders"); w.Code != http.StatusUnauthorized {
		t.Errorf("期限切れ後の一覧取得 status = %d, want 401", w.Code)
	}
}

// TestWire_SessionExpiredFetchLeavesListReset はセッション期限切れになった一覧取得のあと、
// 一覧がエラー文言なしの初期状態になることを検証する。
// 一覧ストア単体では既存の項目を保持するが、サインアウト時のリセットが先に走るため
// 結合した状態では項目は空になる。
func TestWire_SessionExpiredFetchLeavesListReset(t *testing.T) {
	backend, srv := newFakeBackend(t)
	c := newTestComponents(t, srv.URL, kvstore.NewMemoryStore())
	c.boot.Run(context.Background())
	c.boot.Wait()

	if w := post(t, c.router, "/api/session/login", `{"email":"a@example.com","password":"pw"}`); w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	if w := post(t, c.router, "/api/lists/orders/fetch?refresh=true", ""); w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", w.Code, w.Body.String())
	}

	backend.setExpired(true)
	if w := post(t, c.router, "/api/lists/orders/fetch", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired fetch status = %d, want 401", w.Code)
	}

	list, _ := c.lists.Get("orders")
	got := list.View().(pager.State[model.Order])
	if len(got.Items) != 0 || got.CurrentPage != 0 || !got.HasMore {
		t.Errorf("一覧が初期状態に戻っていない: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("期限切れでError = %q が設定された", got.Error)
	}
	if got.IsLoading || got.IsLoadingMore || got.Initialized {
		t.Errorf("フラグが初期状態でない: %+v", got)
	}
}

// TestWire_RestoresPersistedSession は保存済みセッションが起動時に復元されることを検証する。
func TestWire_RestoresPersistedSession(t *testing.T) {
	backend, srv := newFakeBackend(t)
	kv := kvstore.NewMemoryStore()
	if err := auth.NewSessionStore(kv).Save(context.Background(), "tok-saved", model.UserProfile{ID: "u-1"}); err != nil {
		t.Fatalf("Saveがエラーを返した: %v", err)
	}

	c := newTestComponents(t, srv.URL, kv)
	c.boot.Run(context.Background())
	report := c.boot.Wait()

	st := c.auth.State()
	if !st.IsInitialized || !st.IsAuthenticated {
		t.Fatalf("復元後の状態 = %+v", st)
	}
	if backend.callCount("/user/current") != 1 {
		t.Errorf("/user/current calls = %d, want 1", backend.callCount("/user/current"))
	}
	if len(report.Tasks) == 0 {
		t.Error("診断結果が空")
	}

	w := get(t, c.router, "/api/bootstrap")
	if w.Code != http.StatusOK {
		t.Errorf("bootstrap status = %d", w.Code)
	}
}

func TestWire_RefresherSkipsWhenSignedOut(t *testing.T) {
	backend, srv := newFakeBackend(t)
	c := newTestComponents(t, srv.URL, kvstore.NewMemoryStore())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.refresher.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnceがエラーを返した: %v", err)
	}
	if backend.callCount("/user/current") != 0 || backend.callCount("/wallet/balance") != 0 {
		t.Error("未ログインなのにリフレッシュが通信した")
	}
}

func TestWire_MetricsEndpoint(t *testing.T) {
	_, srv := newFakeBackend(t)
	c := newTestComponents(t, srv.URL, kvstore.NewMemoryStore())

	post(t, c.router, "/api/session/login", `{"email":"a@example.com","password":"pw"}`)

	w := get(t, c.router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "giftdesk_api_requests_total") {
		t.Error("APIリクエストのメトリクスが出力されていない")
	}
}
