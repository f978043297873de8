package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/giftdesk/internal/auth"
	"github.com/hitoshi/giftdesk/internal/model"
)

// SessionManager はセッションハンドラーが必要とする認証ストアのインターフェース。
type SessionManager interface {
	State() auth.State
	Login(ctx context.Context, req auth.LoginRequest) error
	Register(ctx context.Context, req auth.RegisterRequest) error
	SocialLogin(ctx context.Context, req auth.SocialLoginRequest) error
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) error
}

// SessionHandler はログイン状態を扱うHTTPハンドラー。
type SessionHandler struct {
	auth   SessionManager
	logger *slog.Logger
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(m SessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: m, logger: logger}
}

// Get は現在の認証ストアの状態を返す。
// GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.State())
}

// Login はメールアドレスとパスワードでログインする。
// POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, model.NewInvalidRequestError("email and password are required"))
		return
	}
	h.respond(w, h.auth.Login(r.Context(), req))
}

// Register は新規登録してログインする。
// POST /api/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, model.NewInvalidRequestError("email and password are required"))
		return
	}
	h.respond(w, h.auth.Register(r.Context(), req))
}

// Social は外部IdPのIDトークンでログインする。
// POST /api/session/social
func (h *SessionHandler) Social(w http.ResponseWriter, r *http.Request) {
	var req auth.SocialLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		writeError(w, h.logger, model.NewInvalidRequestError("idToken is required"))
		return
	}
	h.respond(w, h.auth.SocialLogin(r.Context(), req))
}

// Logout はログアウトする。ローカルのセッションは常に破棄される。
// POST /api/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Warn("セッションの削除に失敗しました", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, h.auth.State())
}

// Refresh はユーザー情報を再取得する。
// POST /api/session/refresh
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.auth.RefreshUser(r.Context())
	if errors.Is(err, auth.ErrNotAuthenticated) {
		writeError(w, h.logger, model.NewUnauthenticatedError())
		return
	}
	h.respond(w, err)
}

func (h *SessionHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.auth.State())
}
