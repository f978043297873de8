package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/giftdesk/internal/appinfo"
	"github.com/hitoshi/giftdesk/internal/bootstrap"
	"github.com/hitoshi/giftdesk/internal/push"
	"github.com/hitoshi/giftdesk/internal/route"
)

// AppState はアプリ情報ストア。
type AppState interface {
	Snapshot() appinfo.State
	CompleteOnboarding(ctx context.Context) error
}

// BootstrapReporter は起動処理の診断結果を返す。
type BootstrapReporter interface {
	Report() bootstrap.Report
}

// LinkResolver はバナーやポップアップのルートコードとリンクを遷移先に変換する。
type LinkResolver interface {
	ResolveLink(code, link string) route.Target
}

// AppHandler は認証不要のアプリ情報エンドポイントのハンドラー。
type AppHandler struct {
	app       AppState
	bootstrap BootstrapReporter
	links     LinkResolver
	logger    *slog.Logger
}

// NewAppHandler はAppHandlerを生成する。
func NewAppHandler(app AppState, boot BootstrapReporter, links LinkResolver, logger *slog.Logger) *AppHandler {
	return &AppHandler{app: app, bootstrap: boot, links: links, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health は死活確認に応答する。
// GET /health
func (h *AppHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Get はアプリ設定・国一覧・アップデート判定を返す。
// GET /api/app
func (h *AppHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// CompleteOnboarding はオンボーディング完了を記録する。
// POST /api/app/onboarding
func (h *AppHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.app.CompleteOnboarding(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// Bootstrap は起動処理の診断結果を返す。
// GET /api/bootstrap
func (h *AppHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bootstrap.Report())
}

// Route は内部ルートコードを遷移先に変換する。未知のコードはHomeになる。
// GET /api/routes/{code}
func (h *AppHandler) Route(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !route.Known(code) {
		h.logger.Warn("未知のルートコードです", slog.String("code", code))
	}
	writeJSON(w, http.StatusOK, route.Resolve(code))
}

// ResolveLink はバナーのタップ先を決める。codeが優先され、
// codeが空の場合は安全な外部リンクのみを返す。
// GET /api/routes?code=&link=
func (h *AppHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.links.ResolveLink(q.Get("code"), q.Get("link")))
}

// PushRoute は通知ペイロードを遷移先に変換する。
// POST /api/push/route
func (h *AppHandler) PushRoute(w http.ResponseWriter, r *http.Request) {
	var p push.Payload
	if !decodeBody(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, push.RouteFor(p))
}
