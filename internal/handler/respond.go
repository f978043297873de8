// Package handler はローカル状態ゲートウェイのHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/giftdesk/internal/middleware"
	"github.com/hitoshi/giftdesk/internal/model"
)

// maxBodyBytes はリクエストボディの上限。
const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody はJSONボディをdstに読み込む。失敗時は400を書き込みfalseを返す。
// 空ボディは許容する。
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("malformed JSON body"))
		return false
	}
	return true
}

// sessionToken はセッションミドルウェアが注入したトークンを取り出す。
func sessionToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := middleware.TokenFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return "", false
	}
	return token, true
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	middleware.WriteError(w, logger, err)
}
