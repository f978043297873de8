package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/giftdesk/internal/appinfo"
	"github.com/hitoshi/giftdesk/internal/auth"
	"github.com/hitoshi/giftdesk/internal/bootstrap"
	"github.com/hitoshi/giftdesk/internal/middleware"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
	"github.com/hitoshi/giftdesk/internal/route"
	"github.com/hitoshi/giftdesk/internal/security"
	"github.com/hitoshi/giftdesk/internal/wallet"
	"golang.org/x/time/rate"
)

// --- モック定義 ---

type mockSession struct {
	token  string
	userID string
}

func (m *mockSession) Session() (string, string) { return m.token, m.userID }

type mockAuth struct {
	state      auth.State
	loginFn    func(ctx context.Context, req auth.LoginRequest) error
	registerFn func(ctx context.Context, req auth.RegisterRequest) error
	socialFn   func(ctx context.Context, req auth.SocialLoginRequest) error
	logoutFn   func(ctx context.Context) error
	refreshFn  func(ctx context.Context) error
}

func (m *mockAuth) State() auth.State { return m.state }

func (m *mockAuth) Login(ctx context.Context, req auth.LoginRequest) error {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return nil
}

func (m *mockAuth) Register(ctx context.Context, req auth.RegisterRequest) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil
}

func (m *mockAuth) SocialLogin(ctx context.Context, req auth.SocialLoginRequest) error {
	if m.socialFn != nil {
		return m.socialFn(ctx, req)
	}
	return nil
}

func (m *mockAuth) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAuth) RefreshUser(ctx context.Context) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return nil
}

type mockBalance struct {
	state     wallet.BalanceState
	refreshFn func(ctx context.Context, token string) error
	refreshes int
}

func (m *mockBalance) Snapshot() wallet.BalanceState { return m.state }

func (m *mockBalance) Refresh(ctx context.Context, token string) error {
	m.refreshes++
	if m.refreshFn != nil {
		return m.refreshFn(ctx, token)
	}
	m.state.Balance = &model.WalletBalance{Balance: 12.5, Currency: "USD"}
	return nil
}

type mockOrders struct {
	detailFn func(ctx context.Context, token, orderID string) (*model.OrderDetail, error)
}

func (m *mockOrders) Detail(ctx context.Context, token, orderID string) (*model.OrderDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, token, orderID)
	}
	return &model.OrderDetail{Order: model.Order{ID: orderID}}, nil
}

type mockLottery struct {
	infoFn func(ctx context.Context, token string) (*model.LotteryInfo, error)
	drawFn func(ctx context.Context, token string) (*model.DrawResult, error)
}

func (m *mockLottery) Info(ctx context.Context, token string) (*model.LotteryInfo, error) {
	if m.infoFn != nil {
		return m.infoFn(ctx, token)
	}
	return &model.LotteryInfo{RemainingDraws: 3}, nil
}

func (m *mockLottery) Draw(ctx context.Context, token string) (*model.DrawResult, error) {
	if m.drawFn != nil {
		return m.drawFn(ctx, token)
	}
	return &model.DrawResult{RemainingDraws: 2}, nil
}

type mockCheckIn struct {
	statusFn  func(ctx context.Context, token string) (*model.CheckInStatus, error)
	checkInFn func(ctx context.Context, token string) (*model.CheckInResult, error)
}

func (m *mockCheckIn) Status(ctx context.Context, token string) (*model.CheckInStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, token)
	}
	return &model.CheckInStatus{StreakDays: 1}, nil
}

func (m *mockCheckIn) CheckIn(ctx context.Context, token string) (*model.CheckInResult, error) {
	if m.checkInFn != nil {
		return m.checkInFn(ctx, token)
	}
	return &model.CheckInResult{RewardPoints: 10, StreakDays: 2}, nil
}

type mockVIP struct{}

func (mockVIP) Info(ctx context.Context, token string) (*model.VIPInfo, error) {
	return &model.VIPInfo{}, nil
}

type mockInvite struct{}

func (mockInvite) Summary(ctx context.Context, token string) (*model.InviteSummary, error) {
	return &model.InviteSummary{}, nil
}

type mockApp struct {
	state      appinfo.State
	completeFn func(ctx context.Context) error
}

func (m *mockApp) Snapshot() appinfo.State { return m.state }

func (m *mockApp) CompleteOnboarding(ctx context.Context) error {
	if m.completeFn != nil {
		return m.completeFn(ctx)
	}
	m.state.CompletedOnboarding = true
	return nil
}

type mockBootstrap struct{ report bootstrap.Report }

func (m *mockBootstrap) Report() bootstrap.Report { return m.report }

// testEnv はテスト用のルーターと差し替え可能な依存をまとめたもの。
type testEnv struct {
	session *mockSession
	auth    *mockAuth
	balance *mockBalance
	orders  *mockOrders
	lottery *mockLottery
	checkin *mockCheckIn
	app     *mockApp
	boot    *mockBootstrap
	lists   *pager.Registry
	handler http.Handler
	logs    *bytes.Buffer
}

// pageFetcherFn はテストごとに差し替えるorders一覧の取得関数。
type pageFetcherFn func(ctx context.Context, token string, page, pageSize int) ([]model.Order, error)

func newTestEnv(t *testing.T, fetch pageFetcherFn) *testEnv {
	t.Helper()
	if fetch == nil {
		fetch = func(ctx context.Context, token string, page, pageSize int) ([]model.Order, error) {
			return nil, nil
		}
	}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	limiter := middleware.NewActionLimiter(middleware.ActionLimiterConfig{
		Rate:            rate.Limit(0.001),
		Burst:           2,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(limiter.Stop)

	env := &testEnv{
		session: &mockSession{token: "tok-1", userID: "u-1"},
		auth:    &mockAuth{},
		balance: &mockBalance{},
		orders:  &mockOrders{},
		lottery: &mockLottery{},
		checkin: &mockCheckIn{},
		app:     &mockApp{},
		boot:    &mockBootstrap{},
		lists: pager.NewRegistry(
			pager.New("orders", pager.PageFetcher[model.Order](fetch), pager.WithPageSize(2), pager.WithLogger(logger)),
		),
		logs: logs,
	}
	env.handler = NewRouter(&RouterDeps{
		Session:           env.session,
		CORSAllowedOrigin: "http://localhost:3000",
		ActionLimiter:     limiter,
		Logger:            logger,
		Auth:              env.auth,
		Lists:             env.lists,
		Balance:           env.balance,
		Orders:            env.orders,
		Lottery:           env.lottery,
		CheckIn:           env.checkin,
		VIP:               mockVIP{},
		Invite:            mockInvite{},
		App:               env.app,
		Bootstrap:         env.boot,
		Links:             route.NewResolver(security.NewLinkGuard()),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "# metrics\n")
		}),
	})
	return env
}

// do はリクエストを実行する。POSTにはクライアントヘッダーを付与する。
func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if method == http.MethodPost {
		req.Header.Set(middleware.ClientHeaderName, "test")
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func newRawRequest(e *testEnv, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}
