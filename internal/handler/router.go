package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/giftdesk/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Session           middleware.SessionSource
	CORSAllowedOrigin string
	ActionLimiter     *middleware.ActionLimiter
	Logger            *slog.Logger

	// 認証
	Auth SessionManager

	// 一覧
	Lists ListRegistry

	// ログインが必要な単発取得
	Balance BalanceSource
	Orders  OrderDetailer
	Lottery LotteryService
	CheckIn CheckInService
	VIP     VIPService
	Invite  InviteService

	// アプリ情報
	App       AppState
	Bootstrap BootstrapReporter
	Links     LinkResolver

	// GET /metrics。nilの場合はルートを登録しない。
	Metrics http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → ClientGuard → Session → ActionLimiter
//
// /health と /metrics はCORS以降のチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	sessionHandler := NewSessionHandler(deps.Auth, logger)
	listHandler := NewListHandler(deps.Lists, logger)
	accountHandler := NewAccountHandler(deps.Balance, deps.Orders, deps.Lottery, deps.CheckIn, deps.VIP, deps.Invite, logger)
	appHandler := NewAppHandler(deps.App, deps.Bootstrap, deps.Links, logger)

	r.Get("/health", appHandler.Health)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(middleware.NewClientGuardMiddleware())

		// --- 認証不要のルート ---
		r.Route("/api/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/social", sessionHandler.Social)
			r.Post("/logout", sessionHandler.Logout)
			r.With(middleware.NewSessionMiddleware(deps.Session)).Post("/refresh", sessionHandler.Refresh)
		})

		r.Get("/api/app", appHandler.Get)
		r.Post("/api/app/onboarding", appHandler.CompleteOnboarding)
		r.Get("/api/bootstrap", appHandler.Bootstrap)
		r.Get("/api/routes", appHandler.ResolveLink)
		r.Get("/api/routes/{code}", appHandler.Route)
		r.Post("/api/push/route", appHandler.PushRoute)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.Session))

			r.Route("/api/lists", func(r chi.Router) {
				r.Get("/", listHandler.Names)
				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", listHandler.Get)
					r.Post("/fetch", listHandler.Fetch)
					r.Post("/more", listHandler.More)
				})
			})

			r.Get("/api/wallet/balance", accountHandler.Balance)
			r.Get("/api/orders/{id}", accountHandler.OrderDetail)
			r.Get("/api/vip", accountHandler.VIP)
			r.Get("/api/invite/summary", accountHandler.InviteSummary)
			r.Get("/api/lottery", accountHandler.Lottery)
			r.Get("/api/checkin", accountHandler.CheckInStatus)

			// 連打を防ぐため操作系にはユーザー単位のレート制限をかける
			r.With(deps.ActionLimiter.Middleware("lottery_draw")).Post("/api/lottery/draw", accountHandler.Draw)
			r.With(deps.ActionLimiter.Middleware("checkin")).Post("/api/checkin", accountHandler.CheckIn)
		})
	})

	return r
}
