// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrSessionExpired はバックエンドがセッション期限切れを通知したことを表す。
// 呼び出し側は文字列比較ではなく errors.Is で判定する。
var ErrSessionExpired = errors.New("session expired")

// SessionExpiredMarker はバックエンドがセッション期限切れ時にmsgへ含める固定文字列。
// この文字列の照合はapiclientの1箇所でのみ行う。
const SessionExpiredMarker = "Session expired"

// FallbackMessage はバックエンドからメッセージが得られなかった場合の表示文言。
const FallbackMessage = "Network error, please try again later."

// RequestErrorKind はAPI呼び出し失敗の分類。
type RequestErrorKind string

const (
	// KindDomain はバックエンドがsuccess=falseを返したことを示す。
	KindDomain RequestErrorKind = "domain"
	// KindTransport はネットワーク層で失敗したことを示す。
	KindTransport RequestErrorKind = "transport"
	// KindHTTP はエンベロープを伴わない非2xxステータスを示す。
	KindHTTP RequestErrorKind = "http"
	// KindDecode はレスポンスがエンベロープとして解釈できなかったことを示す。
	KindDecode RequestErrorKind = "decode"
)

// RequestError はセッション期限切れ以外のAPI呼び出し失敗を表す。
// Message はそのままユーザーに表示できる文言。
type RequestError struct {
	Kind    RequestErrorKind
	Path    string
	Status  int
	Message string
	Err     error
}

// Error はerrorインターフェースを実装する。
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Kind, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Path, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsSessionExpired はエラーがセッション期限切れかどうかを返す。
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// UserMessage はエラーをUIに表示する文言に変換する。
// RequestErrorならバックエンドのmsg、それ以外はフォールバック文言を返す。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return FallbackMessage
}

// APIError はローカルゲートウェイの統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, remote, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSessionExpired  = "SESSION_EXPIRED"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeRemoteRejected  = "REMOTE_REJECTED"
	ErrCodeRemoteFailed    = "REMOTE_FAILED"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeListNotFound    = "LIST_NOT_FOUND"
)

// NewSessionExpiredError はセッション期限切れエラーを生成する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "Your session has expired.",
		Category: "auth",
		Action:   "Please log in again.",
	}
}

// NewUnauthenticatedError は未ログインエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "You are not logged in.",
		Category: "auth",
		Action:   "Please log in to continue.",
	}
}

// NewRemoteRejectedError はバックエンドがsuccess=falseを返した場合のエラーを生成する。
// メッセージはバックエンドのmsgをそのまま使う。
func NewRemoteRejectedError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeRemoteRejected,
		Message:  msg,
		Category: "validation",
		Action:   "Check the input and try again.",
	}
}

// NewRemoteFailedError はネットワーク層やデコードで失敗した場合のエラーを生成する。
func NewRemoteFailedError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeRemoteFailed,
		Message:  msg,
		Category: "remote",
		Action:   "Check your connection and try again later.",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Fix the request body and retry.",
	}
}

// NewListNotFoundError は未登録のリスト名が指定された場合のエラーを生成する。
func NewListNotFoundError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeListNotFound,
		Message:  fmt.Sprintf("Unknown list: %s", name),
		Category: "validation",
		Action:   "Use one of the lists returned by GET /api/lists.",
	}
}
