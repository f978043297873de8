package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/giftdesk/internal/model"
)

// ClientHeaderName は状態を変更するリクエストに必須のヘッダー。
// カスタムヘッダーはCORSプリフライトの対象になるため、
// 許可オリジン以外のWebページからのPOSTを防げる。
const ClientHeaderName = "X-Giftdesk-Client"

// NewClientGuardMiddleware は状態変更メソッドにClientHeaderNameを要求するミドルウェアを返す。
// GET, HEAD, OPTIONSは検証しない。
func NewClientGuardMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get(ClientHeaderName) == "" {
				slog.Warn("クライアントヘッダーのないリクエストを拒否しました",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
					Code:     "CLIENT_HEADER_REQUIRED",
					Message:  "Missing " + ClientHeaderName + " header.",
					Category: "auth",
					Action:   "Send requests from the app shell.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
