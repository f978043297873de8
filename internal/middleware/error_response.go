package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/giftdesk/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// WriteError はサービス層のエラーをステータスコードと統一フォーマットに変換して書き込む。
//
//   - セッション期限切れ: 401 SESSION_EXPIRED
//   - success=false: 422 REMOTE_REJECTED（バックエンドのmsgをそのまま返す）
//   - 通信・HTTP・デコード失敗: 502 REMOTE_FAILED
//   - *model.APIError: 400（未登録リストのみ404、未ログインは401）
//   - それ以外: 500
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	if model.IsSessionExpired(err) {
		WriteErrorResponse(w, http.StatusUnauthorized, model.NewSessionExpiredError())
		return
	}

	var reqErr *model.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Kind == model.KindDomain {
			WriteErrorResponse(w, http.StatusUnprocessableEntity, model.NewRemoteRejectedError(model.UserMessage(err)))
			return
		}
		logger.Warn("バックエンドとの通信に失敗しました",
			slog.String("path", reqErr.Path),
			slog.String("kind", string(reqErr.Kind)),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, http.StatusBadGateway, model.NewRemoteFailedError(model.UserMessage(err)))
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadRequest
		switch apiErr.Code {
		case model.ErrCodeListNotFound:
			status = http.StatusNotFound
		case model.ErrCodeUnauthenticated:
			status = http.StatusUnauthorized
		}
		WriteErrorResponse(w, status, apiErr)
		return
	}

	logger.Error("内部エラーが発生しました", slog.String("error", err.Error()))
	WriteInternalServerError(w)
}
