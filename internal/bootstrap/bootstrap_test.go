package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/giftdesk/internal/apiclient/apiclienttest"
	"github.com/hitoshi/giftdesk/internal/auth"
	"github.com/hitoshi/giftdesk/internal/kvstore"
	"github.com/hitoshi/giftdesk/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeSession struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context)
}

func (f *fakeSession) Restore(ctx context.Context) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fn != nil {
		f.fn(ctx)
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	results map[string]error
}

func (r *fakeRecorder) RecordBootstrapTask(task string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = make(map[string]error)
	}
	r.results[task] = err
}

func TestRun_DoesNotWaitForAuxiliaryTasks(t *testing.T) {
	release := make(chan struct{})
	var buf bytes.Buffer
	session := &fakeSession{}
	b := New(session, []Task{
		{Name: "slow", Run: func(ctx context.Context) error {
			<-release
			return nil
		}},
	}, newTestLogger(&buf), nil)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run が補助タスクの完了を待っている")
	}
	if session.calls != 1 {
		t.Errorf("Restore calls = %d, want 1", session.calls)
	}
	if got := len(b.Report().Tasks); got != 0 {
		t.Errorf("完了前のタスクが報告された: %d", got)
	}

	close(release)
	report := b.Wait()
	if len(report.Tasks) != 1 || !report.Tasks[0].OK {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_WaitsForSession(t *testing.T) {
	var restored bool
	session := &fakeSession{fn: func(ctx context.Context) {
		time.Sleep(20 * time.Millisecond)
		restored = true
	}}
	var buf bytes.Buffer
	b := New(session, nil, newTestLogger(&buf), nil)

	b.Run(context.Background())

	if !restored {
		t.Error("Run がセッション復元の完了前に戻った")
	}
	if b.Wait().SessionDuration <= 0 {
		t.Error("SessionDuration が記録されていない")
	}
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	var buf bytes.Buffer
	rec := &fakeRecorder{}
	b := New(&fakeSession{}, []Task{
		{Name: "ok", Run: func(ctx context.Context) error { return nil }},
		{Name: "fails", Run: func(ctx context.Context) error { return errors.New("offline") }},
		{Name: "panics", Run: func(ctx context.Context) error { panic("nil map") }},
		{Name: "skipped", Run: func(ctx context.Context) error { return fmt.Errorf("%w: no token", ErrSkipped) }},
	}, newTestLogger(&buf), rec)

	b.Run(context.Background())
	report := b.Wait()

	if len(report.Tasks) != 4 {
		t.Fatalf("tasks = %+v", report.Tasks)
	}
	byName := make(map[string]Diagnostic)
	for _, d := range report.Tasks {
		byName[d.Task] = d
	}
	if !byName["ok"].OK {
		t.Errorf("ok = %+v", byName["ok"])
	}
	if byName["fails"].OK || byName["fails"].Error != "offline" {
		t.Errorf("fails = %+v", byName["fails"])
	}
	if byName["panics"].OK || byName["panics"].Error == "" {
		t.Errorf("panics = %+v", byName["panics"])
	}
	if !byName["skipped"].Skipped || !byName["skipped"].OK {
		t.Errorf("skipped = %+v", byName["skipped"])
	}

	if rec.results["fails"] == nil || rec.results["ok"] != nil || rec.results["skipped"] != nil {
		t.Errorf("metrics = %v", rec.results)
	}
	if report.Tasks[0].Task != "fails" {
		t.Errorf("タスクが名前順に並んでいない: %+v", report.Tasks)
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	runs := 0
	session := &fakeSession{}
	b := New(session, []Task{{Name: "count", Run: func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	}}}, newTestLogger(&buf), nil)

	b.Run(context.Background())
	b.Run(context.Background())
	b.Wait()

	if session.calls != 1 || runs != 1 {
		t.Errorf("restore calls = %d, task runs = %d, want 1 each", session.calls, runs)
	}
}

// TestRun_InvalidStoredTokenClearsSession は保存済みトークンの検証に失敗した場合、
// 初期化済み・未認証になり、永続化されたセッションが削除されることを検証する。
func TestRun_InvalidStoredTokenClearsSession(t *testing.T) {
	ctx := context.Background()
	api := apiclienttest.New().Fail("/user/current", fmt.Errorf("/user/current: %w", model.ErrSessionExpired))
	kv := kvstore.NewMemoryStore()
	sessions := auth.NewSessionStore(kv)
	if err := sessions.Save(ctx, "stale-token", model.UserProfile{ID: "u1"}); err != nil {
		t.Fatalf("Save がエラーを返した: %v", err)
	}

	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	manager := auth.NewManager(auth.NewService(api), sessions, logger)
	b := New(manager, nil, logger, nil)

	b.Run(ctx)

	s := manager.State()
	if !s.IsInitialized {
		t.Error("IsInitialized = false, want true")
	}
	if s.IsAuthenticated {
		t.Error("IsAuthenticated = true, want false")
	}
	if _, ok, _ := kv.Get(ctx, auth.SessionKey); ok {
		t.Error("永続化されたセッションが削除されていない")
	}
}
