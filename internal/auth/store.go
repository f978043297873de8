package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/state"
)

// ErrNotAuthenticated はログインしていない状態で認証が必要な操作を行ったことを表す。
var ErrNotAuthenticated = errors.New("not authenticated")

// State は認証ストアの状態。
// トークンはJSONに出力しない。
type State struct {
	User            *model.UserProfile `json:"user"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	IsInitialized   bool               `json:"isInitialized"`
	IsLoading       bool               `json:"isLoading"`
	Error           string             `json:"error,omitempty"`

	token string
}

// Manager はログイン状態を保持する認証ストア。
// 起動時のセッション復元、ログイン系操作、ログアウト、
// セッション期限切れ時のクリアを担う。
type Manager struct {
	api      API
	sessions *SessionStore
	logger   *slog.Logger
	state    *state.Container[State]

	restoreOnce sync.Once
	// commitMu は永続化と状態の更新を1組として直列化する。
	commitMu    sync.Mutex

	mu          sync.Mutex
	onSignedOut []func()
}

// NewManager はManagerを生成する。
func NewManager(api API, sessions *SessionStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:      api,
		sessions: sessions,
		logger:   logger,
		state:    state.New(State{}),
	}
}

// State は現在の状態を返す。
func (m *Manager) State() State {
	s := m.state.Get()
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Token は現在のセッショントークンを返す。未ログインの場合は空文字列。
func (m *Manager) Token() string {
	return m.state.Get().token
}

// Session は現在のトークンとユーザーIDを返す。未ログインの場合は両方とも空。
func (m *Manager) Session() (token, userID string) {
	s := m.state.Get()
	if s.User != nil {
		userID = s.User.ID
	}
	return s.token, userID
}

// Subscribe は状態変更を購読する。
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	return m.state.Subscribe(fn)
}

// OnSignedOut はログアウトまたはセッション期限切れで
// 認証状態がクリアされたときに呼ばれる関数を登録する。
func (m *Manager) OnSignedOut(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSignedOut = append(m.onSignedOut, fn)
}

// Restore は永続化されたセッションを復元する。
// 結果にかかわらずIsInitializedは必ずtrueになる。2回目以降の呼び出しは何もしない。
//
//  1. 保存済みセッションがなければ未ログインで初期化完了
//  2. あればキャッシュ済みユーザーを楽観的に設定し、トークンでユーザー情報を再取得
//  3. 成功すれば最新のユーザーで認証済みとし、セッションを保存し直す
//  4. 失敗すれば（期限切れを含む）永続化と状態の両方をクリアする
func (m *Manager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() {
		m.restore(ctx)
	})
}

func (m *Manager) restore(ctx context.Context) {
	sess, done := m.beginRestore(ctx)
	if done {
		return
	}

	user, err := m.api.CurrentUser(ctx, sess.Token)

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	// 検証中にログインやログアウトでセッションが置き換わった場合は結果を捨てる。
	if m.state.Get().token != sess.Token {
		m.markInitialized()
		m.logger.Info("復元中にセッションが置き換わったため復元結果を破棄しました")
		return
	}

	if err != nil {
		m.logger.Info("保存済みセッションが無効のため破棄します",
			slog.Bool("session_expired", model.IsSessionExpired(err)),
			slog.String("error", err.Error()),
		)
		if cerr := m.sessions.Clear(ctx); cerr != nil {
			m.logger.Warn("保存済みセッションの削除に失敗しました", slog.String("error", cerr.Error()))
		}
		m.state.Update(func(s *State) bool {
			*s = State{IsInitialized: true}
			return true
		})
		return
	}

	if serr := m.sessions.Save(ctx, sess.Token, *user); serr != nil {
		m.logger.Warn("更新したセッションの保存に失敗しました", slog.String("error", serr.Error()))
	}
	m.state.Update(func(s *State) bool {
		*s = State{User: user, token: sess.Token, IsAuthenticated: true, IsInitialized: true}
		return true
	})
	m.logger.Info("セッションを復元しました", slog.String("user_id", user.ID))
}

// beginRestore は保存済みセッションを読み込み、キャッシュ済みユーザーを楽観的に設定する。
// 検証が不要な場合はdone=trueを返す。
func (m *Manager) beginRestore(ctx context.Context) (sess *model.Session, done bool) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if m.state.Get().IsAuthenticated {
		m.markInitialized()
		m.logger.Info("ログイン済みのためセッション復元をスキップしました")
		return nil, true
	}

	sess, err := m.sessions.Load(ctx)
	if err != nil {
		m.logger.Warn("保存済みセッションの読み込みに失敗しました", slog.String("error", err.Error()))
	}
	if sess == nil {
		m.state.Update(func(s *State) bool {
			*s = State{IsInitialized: true}
			return true
		})
		m.logger.Info("保存済みセッションはありません")
		return nil, true
	}

	cached := sess.Profile
	m.state.Update(func(s *State) bool {
		s.User = &cached
		s.token = sess.Token
		s.IsLoading = true
		return true
	})
	return sess, false
}

func (m *Manager) markInitialized() {
	m.state.Update(func(s *State) bool {
		if s.IsInitialized {
			return false
		}
		s.IsInitialized = true
		return true
	})
}

// Login はメールアドレスとパスワードでログインする。
func (m *Manager) Login(ctx context.Context, req LoginRequest) error {
	return m.signIn(ctx, "login", func() (*model.AuthResult, error) {
		return m.api.Login(ctx, req)
	})
}

// Register は新規登録してログイン状態にする。
func (m *Manager) Register(ctx context.Context, req RegisterRequest) error {
	return m.signIn(ctx, "register", func() (*model.AuthResult, error) {
		return m.api.Register(ctx, req)
	})
}

// SocialLogin は外部IdPのIDトークンでログインする。
func (m *Manager) SocialLogin(ctx context.Context, req SocialLoginRequest) error {
	return m.signIn(ctx, "social_login", func() (*model.AuthResult, error) {
		return m.api.SocialLogin(ctx, req)
	})
}

func (m *Manager) signIn(ctx context.Context, method string, call func() (*model.AuthResult, error)) error {
	m.state.Update(func(s *State) bool {
		s.IsLoading = true
		s.Error = ""
		return true
	})

	res, err := call()
	if err != nil {
		m.state.Update(func(s *State) bool {
			s.IsLoading = false
			s.Error = model.UserMessage(err)
			return true
		})
		m.logger.Warn("ログインに失敗しました", slog.String("method", method), slog.String("error", err.Error()))
		return err
	}

	user := res.User
	m.commitMu.Lock()
	if err := m.sessions.Save(ctx, res.Token, res.User); err != nil {
		m.logger.Warn("セッションの保存に失敗しました", slog.String("error", err.Error()))
	}
	m.state.Update(func(s *State) bool {
		*s = State{User: &user, token: res.Token, IsAuthenticated: true, IsInitialized: true}
		return true
	})
	m.commitMu.Unlock()
	m.logger.Info("ログインしました", slog.String("method", method), slog.String("user_id", user.ID))
	return nil
}

// Logout はログアウトする。
// バックエンドへの通知に失敗してもローカルのセッションは必ず破棄する。
func (m *Manager) Logout(ctx context.Context) error {
	token := m.Token()
	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil && !model.IsSessionExpired(err) {
			m.logger.Warn("バックエンドへのログアウト通知に失敗しました", slog.String("error", err.Error()))
		}
	}
	return m.clear(ctx, "logout")
}

// RefreshUser は最新のユーザー情報を取得して状態と永続化を更新する。
// アプリのフォアグラウンド復帰時や定期リフレッシュで呼ばれる。
func (m *Manager) RefreshUser(ctx context.Context) error {
	token := m.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		if model.IsSessionExpired(err) {
			m.HandleSessionExpired(ctx)
		}
		return err
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if m.state.Get().token != token {
		return nil
	}
	if err := m.sessions.Save(ctx, token, *user); err != nil {
		m.logger.Warn("更新したセッションの保存に失敗しました", slog.String("error", err.Error()))
	}
	m.state.Update(func(s *State) bool {
		s.User = user
		return true
	})
	return nil
}

// HandleSessionExpired はセッション期限切れを受けて認証状態をクリアする。
// 既に未ログインの場合は何もしない。
func (m *Manager) HandleSessionExpired(ctx context.Context) {
	if m.Token() == "" {
		return
	}
	if err := m.clear(ctx, "session_expired"); err != nil {
		m.logger.Warn("期限切れセッションの削除に失敗しました", slog.String("error", err.Error()))
	}
}

func (m *Manager) clear(ctx context.Context, reason string) error {
	m.commitMu.Lock()
	err := m.sessions.Clear(ctx)
	m.state.Update(func(s *State) bool {
		*s = State{IsInitialized: s.IsInitialized}
		return true
	})
	m.commitMu.Unlock()

	m.mu.Lock()
	hooks := append([]func(){}, m.onSignedOut...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	m.logger.Info("ログアウトしました", slog.String("reason", reason))
	return err
}
