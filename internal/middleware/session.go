// Package middleware はローカルゲートウェイのHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/giftdesk/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userIDContextKey = contextKey("user_id")
	tokenContextKey  = contextKey("session_token")
)

// SessionSource は現在のログインセッションを返す。
// 未ログインの場合はtokenが空。
type SessionSource interface {
	Session() (token, userID string)
}

// NewSessionMiddleware はログイン済みの場合のみ後続に渡すミドルウェアを返す。
// セッショントークンとユーザーIDをリクエストコンテキストに注入する。
// 未ログインの場合は401を返す。
func NewSessionMiddleware(src SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, userID := src.Session()
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}
			if info, ok := r.Context().Value(requestInfoContextKey).(*requestInfo); ok {
				info.userID = userID
			}
			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			ctx = context.WithValue(ctx, userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromContext はリクエストコンテキストからセッショントークンを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func TokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("session token not found in context")
	}
	return token, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithSession はコンテキストにトークンとユーザーIDを注入する。
// テストで使用する。
func ContextWithSession(ctx context.Context, token, userID string) context.Context {
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return context.WithValue(ctx, userIDContextKey, userID)
}
