// Package apiclient はバックエンドAPIを呼び出す共通リクエストラッパーを提供する。
// 全レスポンスが従う {success, data, msg} エンベロープの解釈と、
// セッション期限切れを含むエラーの分類をこのパッケージの1箇所で行う。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hitoshi/giftdesk/internal/model"
)

// maxResponseSize はレスポンスボディの読み取り上限（10MB）。
const maxResponseSize = 10 << 20

// 結果ラベル（メトリクス用）
const (
	OutcomeOK             = "ok"
	OutcomeDomainError    = "domain_error"
	OutcomeTransportError = "transport_error"
	OutcomeHTTPError      = "http_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeSessionExpired = "session_expired"
)

// Poster はサービスラッパーが依存するPOST呼び出しのインターフェース。
// テスト時にモックに差し替え可能。
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Recorder はAPI呼び出しのメトリクスを記録するインターフェース。
type Recorder interface {
	RecordAPIRequest(path, outcome string, duration time.Duration)
}

// Config はClientの生成パラメータ。
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Limiter はクライアント側の送信レート制限。nilの場合は制限しない。
	Limiter   *rate.Limiter
	UserAgent string
	DeviceID  string
	Logger    *slog.Logger
	Metrics   Recorder
}

// Client はバックエンドAPIのクライアント。
// 失敗したリクエストを自動で再送することはない。
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	deviceID   string
	logger     *slog.Logger
	metrics    Recorder

	mu           sync.RWMutex
	expiredHooks []func()
}

// New はClientを生成する。BaseURLは必須。
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Giftdesk/1.0"
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    cfg.Limiter,
		userAgent:  userAgent,
		deviceID:   cfg.DeviceID,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// OnSessionExpired はセッション期限切れを検知したときに呼ぶフックを登録する。
// フックはリクエストごとに同期的に呼ばれる。
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiredHooks = append(c.expiredHooks, fn)
}

// Post はPOSTリクエストを送信する。全サービス呼び出しはこの形を使う。
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Request はbaseURL+pathへJSONボディでHTTPリクエストを送り、
// エンベロープのdataをoutへデコードする。outがnilの場合はdataを捨てる。
//
// 返すエラー:
//   - model.ErrSessionExpired（errors.Isで判定）: msgに "Session expired" を含む、またはHTTP 401
//   - *model.RequestError: それ以外の失敗。Messageはそのまま表示できる文言
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, body, out)
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(path, outcomeOf(err), time.Since(start))
	}
	if errors.Is(err, model.ErrSessionExpired) {
		c.logger.Warn("セッション期限切れを検出しました",
			slog.String("path", path),
		)
		c.notifySessionExpired()
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &model.RequestError{Kind: model.KindTransport, Path: path, Message: model.FallbackMessage, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	} else if method == http.MethodPost {
		reader = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("APIリクエストに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &model.RequestError{Kind: model.KindTransport, Path: path, Message: model.FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &model.RequestError{Kind: model.KindTransport, Path: path, Status: resp.StatusCode, Message: model.FallbackMessage, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", path, model.ErrSessionExpired)
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &model.RequestError{Kind: model.KindHTTP, Path: path, Status: resp.StatusCode, Message: model.FallbackMessage}
		}
		return &model.RequestError{Kind: model.KindDecode, Path: path, Status: resp.StatusCode, Message: model.FallbackMessage, Err: err}
	}

	if !env.Success {
		if strings.Contains(env.Msg, model.SessionExpiredMarker) {
			return fmt.Errorf("%s: %w", path, model.ErrSessionExpired)
		}
		msg := env.Msg
		if msg == "" {
			msg = model.FallbackMessage
		}
		return &model.RequestError{Kind: model.KindDomain, Path: path, Status: resp.StatusCode, Message: msg}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.RequestError{Kind: model.KindHTTP, Path: path, Status: resp.StatusCode, Message: model.FallbackMessage}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &model.RequestError{Kind: model.KindDecode, Path: path, Status: resp.StatusCode, Message: model.FallbackMessage, Err: err}
	}
	return nil
}

func (c *Client) notifySessionExpired() {
	c.mu.RLock()
	hooks := make([]func(), len(c.expiredHooks))
	copy(hooks, c.expiredHooks)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

// outcomeOf はエラーをメトリクスの結果ラベルに変換する。
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, model.ErrSessionExpired) {
		return OutcomeSessionExpired
	}
	var reqErr *model.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Kind {
		case model.KindDomain:
			return OutcomeDomainError
		case model.KindHTTP:
			return OutcomeHTTPError
		case model.KindDecode:
			return OutcomeDecodeError
		}
	}
	return OutcomeTransportError
}
