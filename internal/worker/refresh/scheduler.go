// Package refresh はログイン中のユーザー情報を定期的に取り直すワーカーを提供する。
// 長時間動くプロセスで「アプリのフォアグラウンド復帰時の再取得」に相当する処理を行う。
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/giftdesk/internal/model"
)

// Session はログイン状態の参照インターフェース。
type Session interface {
	Token() string
}

// Job は1回のリフレッシュサイクルで実行する処理。
type Job struct {
	Name string
	Run  func(ctx context.Context, token string) error
}

// Scheduler は一定間隔でJobを並列実行する。
// 未ログインの間は何もしない。
type Scheduler struct {
	session        Session
	jobs           []Job
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler はSchedulerを生成する。
// maxConcurrencyが0以下の場合はデフォルト値2を使用する。
func NewScheduler(session Session, jobs []Job, logger *slog.Logger, maxConcurrency int) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		session:        session,
		jobs:           jobs,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
// 起動直後はセッション復元と重なるため実行せず、最初のティックを待つ。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Info("リフレッシュ間隔が0のためスケジューラを起動しません")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("リフレッシュスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("job_count", len(s.jobs)),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("リフレッシュスケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Warn("リフレッシュサイクルでエラーが発生しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は全Jobを1回実行する。
// 未ログインならスキップする。セッション期限切れは各Jobの中で処理済みのため
// エラーとして返さない。それ以外のエラーはまとめて返す。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	token := s.session.Token()
	if token == "" {
		s.logger.Debug("未ログインのためリフレッシュをスキップしました")
		return nil
	}

	start := time.Now()
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, job := range s.jobs {
		wg.Add(1)
		sem <- struct{}{}

		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()

			err := j.Run(ctx, token)
			if err == nil || model.IsSessionExpired(err) {
				return
			}
			s.logger.Warn("リフレッシュジョブに失敗しました",
				slog.String("job", j.Name),
				slog.String("error", err.Error()),
			)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(job)
	}

	wg.Wait()

	s.logger.Info("リフレッシュサイクルが完了しました",
		slog.Int("job_count", len(s.jobs)),
		slog.Int("error_count", len(errs)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return errors.Join(errs...)
}
