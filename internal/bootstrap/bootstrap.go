// Package bootstrap は起動時の初期化を行う。
//
// セッション復元だけを待ち合わせ、国一覧・アプリ設定・プッシュ登録・
// 初回起動計測などの補助タスクは並行に投げっぱなしで実行する。
// 補助タスクの失敗はログと診断情報に記録するだけで、他のタスクや起動を止めない。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"
)

// ErrSkipped はタスクが実行条件を満たさずスキップされたことを表す。
var ErrSkipped = errors.New("skipped")

// SessionRestorer は永続化されたセッションを復元する。
// 結果にかかわらず戻った時点で初期化済みになっていること。
type SessionRestorer interface {
	Restore(ctx context.Context)
}

// Recorder は補助タスクの結果を記録する。
type Recorder interface {
	RecordBootstrapTask(task string, err error)
}

// Task は補助タスク。
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Diagnostic は補助タスク1件の実行結果。
type Diagnostic struct {
	Task     string        `json:"task"`
	OK       bool          `json:"ok"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report は起動処理の結果。
type Report struct {
	SessionDuration time.Duration `json:"sessionDuration"`
	Tasks           []Diagnostic  `json:"tasks"`
}

// Bootstrapper は起動処理を1度だけ実行する。
type Bootstrapper struct {
	session SessionRestorer
	tasks   []Task
	logger  *slog.Logger
	metrics Recorder

	once      sync.Once
	wg        sync.WaitGroup
	mu        sync.Mutex
	sessionIn time.Duration
	diags     []Diagnostic
}

// New はBootstrapperを生成する。
func New(session SessionRestorer, tasks []Task, logger *slog.Logger, metrics Recorder) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		session: session,
		tasks:   tasks,
		logger:  logger,
		metrics: metrics,
	}
}

// Run は補助タスクをゴルーチンで起動し、セッション復元の完了だけを待って戻る。
// 2回目以降の呼び出しは何もしない。
// 補助タスクはctxを引き継ぐため、ctxはアプリの生存期間と同じものを渡す。
func (b *Bootstrapper) Run(ctx context.Context) {
	b.once.Do(func() {
		b.logger.Info("起動処理を開始します", slog.Int("task_count", len(b.tasks)))

		for _, t := range b.tasks {
			b.wg.Add(1)
			go b.runTask(ctx, t)
		}

		start := time.Now()
		b.session.Restore(ctx)
		elapsed := time.Since(start)

		b.mu.Lock()
		b.sessionIn = elapsed
		b.mu.Unlock()

		b.logger.Info("セッション復元が完了しました",
			slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
		)
	})
}

// Wait は全ての補助タスクの完了を待ち、結果を返す。
// Runより前に呼んだ場合は空のReportを返す。
func (b *Bootstrapper) Wait() Report {
	b.wg.Wait()
	return b.Report()
}

// Report は現時点までの結果を返す。完了していないタスクは含まない。
func (b *Bootstrapper) Report() Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	diags := slices.Clone(b.diags)
	slices.SortFunc(diags, func(x, y Diagnostic) int {
		if x.Task < y.Task {
			return -1
		}
		if x.Task > y.Task {
			return 1
		}
		return 0
	})
	return Report{SessionDuration: b.sessionIn, Tasks: diags}
}

func (b *Bootstrapper) runTask(ctx context.Context, t Task) {
	defer b.wg.Done()
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				b.logger.Error("起動タスクでパニックが発生しました",
					slog.String("task", t.Name),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		return t.Run(ctx)
	}()

	d := Diagnostic{Task: t.Name, Duration: time.Since(start)}
	switch {
	case err == nil:
		d.OK = true
	case errors.Is(err, ErrSkipped):
		d.OK = true
		d.Skipped = true
		b.logger.Info("起動タスクをスキップしました", slog.String("task", t.Name), slog.String("reason", err.Error()))
	default:
		d.Error = err.Error()
		b.logger.Warn("起動タスクに失敗しました", slog.String("task", t.Name), slog.String("error", err.Error()))
	}

	if b.metrics != nil {
		if d.Skipped {
			b.metrics.RecordBootstrapTask(t.Name, nil)
		} else {
			b.metrics.RecordBootstrapTask(t.Name, err)
		}
	}

	b.mu.Lock()
	b.diags = append(b.diags, d)
	b.mu.Unlock()
}
