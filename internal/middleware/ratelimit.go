package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ActionLimiterConfig はユーザー操作のレート制限設定を保持する。
type ActionLimiterConfig struct {
	Rate            rate.Limit    // 1ユーザーあたりのレート（req/sec）
	Burst           int           // バーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultActionLimiterConfig はデフォルトの設定を返す。
// 抽選・チェックインなどの操作を1ユーザーあたり 10 req/min に制限する。
func DefaultActionLimiterConfig() ActionLimiterConfig {
	return ActionLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           3,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザーごとのレートリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ActionLimiter は抽選やチェックインの連打をユーザー単位で制限する。
type ActionLimiter struct {
	config ActionLimiterConfig

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewActionLimiter は新しいActionLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewActionLimiter(config ActionLimiterConfig) *ActionLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	al := &ActionLimiter{
		config:   config,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}
	go al.cleanupLoop()
	return al
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (al *ActionLimiter) Stop() {
	al.stopOnce.Do(func() { close(al.stopCh) })
}

// Middleware はレート制限ミドルウェアを返す。
// セッションミドルウェアの後に配置する。
func (al *ActionLimiter) Middleware(action string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				userID = "anonymous"
			}

			if !al.limiter(action + ":" + userID).Allow() {
				writeRateLimitResponse(w, al.config.Rate)
				slog.Warn("レート制限を超過しました",
					slog.String("user_id", userID),
					slog.String("action", action),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount は現在管理されているリミッターのエントリ数を返す。
func (al *ActionLimiter) LimiterCount() int {
	al.mu.Lock()
	defer al.mu.Unlock()
	return len(al.limiters)
}

func (al *ActionLimiter) limiter(key string) *rate.Limiter {
	al.mu.Lock()
	defer al.mu.Unlock()

	if ul, ok := al.limiters[key]; ok {
		ul.lastAccess = time.Now()
		return ul.limiter
	}
	ul := &userLimiter{
		limiter:    rate.NewLimiter(al.config.Rate, al.config.Burst),
		lastAccess: time.Now(),
	}
	al.limiters[key] = ul
	return ul.limiter
}

func (al *ActionLimiter) cleanupLoop() {
	ticker := time.NewTicker(al.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			al.cleanup(time.Now())
		case <-al.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (al *ActionLimiter) cleanup(now time.Time) {
	ttl := al.config.CleanupInterval * 2

	al.mu.Lock()
	defer al.mu.Unlock()
	for key, ul := range al.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(al.limiters, key)
		}
	}
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := 1
	if r > 0 {
		retryAfterSec = int(math.Ceil(1.0 / float64(r)))
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     "RATE_LIMITED",
		Message:  "Too many requests.",
		Category: "validation",
		Action:   "Retry after " + strconv.Itoa(retryAfterSec) + " seconds.",
	})
}
