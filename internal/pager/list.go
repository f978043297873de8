// Package pager はクライアント側のページング一覧ストアを提供する。
//
// 注文・ウォレット履歴・招待・抽選履歴などの一覧は全て同じ規則で動く:
// Fetchでページ0（またはcurrentPage）を取得し、LoadMoreで次ページを追記し、
// 返却件数がページサイズ未満になった時点でHasMoreをfalseにする。
package pager

import (
	"context"
	"log/slog"
	"slices"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/state"
)

// defaultPageSize はページサイズ未指定時の1ページあたりの件数。
const defaultPageSize = 20

// PageFetcher はpage番目（0始まり）のページを取得する関数。
type PageFetcher[T any] func(ctx context.Context, token string, page, pageSize int) ([]T, error)

// Recorder はページ読み込みのメトリクスを記録するインターフェース。
type Recorder interface {
	RecordPageLoad(list, kind string, items int, err error)
}

// State はページング一覧ストアの状態。
//
// 不変条件:
//   - CurrentPage は空でないページを受信したときだけ進む
//   - HasMore は直近の取得件数がページサイズ未満（0件を含む）のときに限りfalse
//   - Items は LoadMore では追記のみ、Fetch(refresh=true) では丸ごと置き換え
//   - Initialized は直近のリフレッシュ以降にFetchが成功した場合のみtrue
type State[T any] struct {
	Items         []T    `json:"items"`
	CurrentPage   int    `json:"currentPage"`
	HasMore       bool   `json:"hasMore"`
	IsLoading     bool   `json:"isLoading"`
	IsLoadingMore bool   `json:"isLoadingMore"`
	Initialized   bool   `json:"initialized"`
	Error         string `json:"error,omitempty"`

	// generation はリフレッシュごとに進み、リフレッシュ前に発行した
	// LoadMoreの応答を破棄するために使う。
	generation uint64
}

// Controller は型パラメータを隠したページング一覧の操作インターフェース。
// ローカルゲートウェイが名前で一覧を引くために使う。
type Controller interface {
	Name() string
	Fetch(ctx context.Context, token string, refresh bool) error
	LoadMore(ctx context.Context, token string) error
	View() any
	Reset()
}

// Option はListの生成オプション。
type Option func(*options)

type options struct {
	pageSize int
	logger   *slog.Logger
	metrics  Recorder
}

// WithPageSize は1ページあたりの件数を指定する。
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithLogger はロガーを指定する。
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics はメトリクス記録先を指定する。
func WithMetrics(r Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// List はページング一覧ストア。状態はListが排他的に所有する。
type List[T any] struct {
	name     string
	fetch    PageFetcher[T]
	pageSize int
	logger   *slog.Logger
	metrics  Recorder
	state    *state.Container[State[T]]
}

// New はListを生成する。
func New[T any](name string, fetch PageFetcher[T], opts ...Option) *List[T] {
	o := options{pageSize: defaultPageSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &List[T]{
		name:     name,
		fetch:    fetch,
		pageSize: o.pageSize,
		logger:   o.logger,
		metrics:  o.metrics,
		state:    state.New(State[T]{HasMore: true}),
	}
}

// Name は一覧の名前を返す。
func (l *List[T]) Name() string { return l.name }

// PageSize は1ページあたりの件数を返す。
func (l *List[T]) PageSize() int { return l.pageSize }

// Snapshot は現在の状態のコピーを返す。
func (l *List[T]) Snapshot() State[T] {
	s := l.state.Get()
	s.Items = slices.Clone(s.Items)
	return s
}

// View はSnapshotをanyとして返す。
func (l *List[T]) View() any { return l.Snapshot() }

// Subscribe は状態変更を購読する。
func (l *List[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	return l.state.Subscribe(fn)
}

// Reset は状態を初期値に戻す。ログアウト時に使う。
func (l *List[T]) Reset() {
	l.state.Update(func(s *State[T]) bool {
		*s = State[T]{HasMore: true, generation: s.generation + 1}
		return true
	})
}

// Fetch は一覧を取得する。
// refresh=trueの場合はItemsを空にしてCurrentPageを0に戻し、ページ0を取得する。
// refresh=falseの場合は現在のページを取得する（初回表示用）。
// 成功するとItemsを取得したページで置き換える。
// 失敗した場合はErrorにメッセージを設定し、既存のItemsは変更しない。
// ただしセッション期限切れの場合はErrorを設定せずに中断する
// （ログイン画面への遷移は上位のハンドラーが行う）。
func (l *List[T]) Fetch(ctx context.Context, token string, refresh bool) error {
	var page int
	var gen uint64
	l.state.Update(func(s *State[T]) bool {
		if refresh {
			s.Items = nil
			s.CurrentPage = 0
			s.HasMore = true
			s.Initialized = false
			s.IsLoadingMore = false
			s.generation++
		}
		s.IsLoading = true
		s.Error = ""
		page = s.CurrentPage
		gen = s.generation
		return true
	})

	items, err := l.fetch(ctx, token, page, l.pageSize)
	l.record("fetch", len(items), err)

	l.state.Update(func(s *State[T]) bool {
		if s.generation != gen {
			return false
		}
		s.IsLoading = false
		if err != nil {
			if !model.IsSessionExpired(err) {
				s.Error = model.UserMessage(err)
			}
			return true
		}
		s.Items = slices.Clone(items)
		s.HasMore = len(items) >= l.pageSize
		s.Initialized = true
		return true
	})

	if err != nil {
		l.logFailure("fetch", page, err)
	}
	return err
}

// LoadMore は次のページを取得してItemsに追記する。
// 読み込み中、HasMore=false、または初回Fetch未完了の場合は何もしない（通信も発生しない）。
// 0件のページを受信した場合はCurrentPageを進めずにHasMoreをfalseにする。
func (l *List[T]) LoadMore(ctx context.Context, token string) error {
	var next int
	var gen uint64
	started := l.state.Update(func(s *State[T]) bool {
		if s.IsLoadingMore || s.IsLoading || !s.HasMore || !s.Initialized {
			return false
		}
		s.IsLoadingMore = true
		s.Error = ""
		next = s.CurrentPage + 1
		gen = s.generation
		return true
	})
	if !started {
		return nil
	}

	items, err := l.fetch(ctx, token, next, l.pageSize)
	l.record("load_more", len(items), err)

	l.state.Update(func(s *State[T]) bool {
		if s.generation != gen {
			return false
		}
		s.IsLoadingMore = false
		if err != nil {
			if !model.IsSessionExpired(err) {
				s.Error = model.UserMessage(err)
			}
			return true
		}
		if len(items) == 0 {
			s.HasMore = false
			return true
		}
		merged := make([]T, 0, len(s.Items)+len(items))
		merged = append(merged, s.Items...)
		merged = append(merged, items...)
		s.Items = merged
		s.CurrentPage = next
		s.HasMore = len(items) >= l.pageSize
		return true
	})

	if err != nil {
		l.logFailure("load_more", next, err)
	}
	return err
}

func (l *List[T]) record(kind string, n int, err error) {
	if l.metrics != nil {
		l.metrics.RecordPageLoad(l.name, kind, n, err)
	}
}

func (l *List[T]) logFailure(kind string, page int, err error) {
	if model.IsSessionExpired(err) {
		l.logger.Info("セッション期限切れのためページ読み込みを中断しました",
			slog.String("list", l.name),
			slog.String("kind", kind),
			slog.Int("page", page),
		)
		return
	}
	l.logger.Warn("ページ読み込みに失敗しました",
		slog.String("list", l.name),
		slog.String("kind", kind),
		slog.Int("page", page),
		slog.String("error", err.Error()),
	)
}

// compile-time interface check
var _ Controller = (*List[struct{}])(nil)
