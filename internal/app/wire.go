package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/appinfo"
	"github.com/hitoshi/giftdesk/internal/auth"
	"github.com/hitoshi/giftdesk/internal/bootstrap"
	"github.com/hitoshi/giftdesk/internal/checkin"
	"github.com/hitoshi/giftdesk/internal/config"
	"github.com/hitoshi/giftdesk/internal/database"
	"github.com/hitoshi/giftdesk/internal/handler"
	"github.com/hitoshi/giftdesk/internal/invite"
	"github.com/hitoshi/giftdesk/internal/kvstore"
	"github.com/hitoshi/giftdesk/internal/lottery"
	"github.com/hitoshi/giftdesk/internal/metrics"
	"github.com/hitoshi/giftdesk/internal/middleware"
	"github.com/hitoshi/giftdesk/internal/order"
	"github.com/hitoshi/giftdesk/internal/pager"
	"github.com/hitoshi/giftdesk/internal/push"
	"github.com/hitoshi/giftdesk/internal/route"
	"github.com/hitoshi/giftdesk/internal/security"
	"github.com/hitoshi/giftdesk/internal/vip"
	"github.com/hitoshi/giftdesk/internal/wallet"
	"github.com/hitoshi/giftdesk/internal/worker/refresh"
)

// kvNamespace はPostgreSQL/Redisに保存するキーの名前空間。
const kvNamespace = "giftdesk"

// components は起動時に組み立てる依存関係一式。
type components struct {
	logger    *slog.Logger
	kv        kvstore.Store
	client    *apiclient.Client
	auth      *auth.Manager
	lists     *pager.Registry
	balance   *wallet.BalanceStore
	appStore  *appinfo.Store
	boot      *bootstrap.Bootstrapper
	refresher *refresh.Scheduler
	limiter   *middleware.ActionLimiter
	router    http.Handler

	closers []func() error
}

// Close は保持しているリソースを解放する。
func (c *components) Close() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.Warn("リソースの解放に失敗しました", slog.String("error", err.Error()))
		}
	}
}

// openStore は設定に応じた端末ローカルのキーバリューストアを開く。
func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), nil, nil
	case config.StorePostgres:
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate kv database: %w", err)
		}
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return kvstore.NewPostgresStore(db, kvNamespace), db.Close, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return kvstore.NewRedisStore(client, kvNamespace+":"), client.Close, nil
	default:
		s, err := kvstore.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

// newHTTPClient はバックエンド向けのHTTPクライアントを生成する。
// STRICT_EGRESSが有効な場合はプライベートアドレス宛ての通信を拒否するクライアントを使う。
func newHTTPClient(cfg *config.Config, guard *security.LinkGuard) *http.Client {
	if cfg.StrictEgress {
		return guard.NewSafeClient(cfg.APITimeout)
	}
	return &http.Client{Timeout: cfg.APITimeout}
}

// wire は設定から全依存関係を組み立てる。
// kvストアだけは呼び出し側が差し替えられるよう引数で受け取る。
func wire(ctx context.Context, cfg *config.Config, kv kvstore.Store, logger *slog.Logger) (*components, error) {
	c := &components{logger: logger, kv: kv}

	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// 2. 端末情報（デバイスIDはAPIクライアントのヘッダーに使う）
	flags := appinfo.NewFlags(kv)
	deviceID, err := flags.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device id: %w", err)
	}
	info := appinfo.ClientInfo{Version: cfg.AppVersion, Platform: cfg.AppPlatform}

	// 3. APIクライアント
	guard := security.NewLinkGuard()
	var limiter *rate.Limiter
	if cfg.APIRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst)
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: newHTTPClient(cfg, guard),
		Limiter:    limiter,
		UserAgent:  fmt.Sprintf("Giftdesk/%s (%s)", cfg.AppVersion, cfg.AppPlatform),
		DeviceID:   deviceID,
		Logger:     logger,
		Metrics:    collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	c.client = client

	// 4. 認証ストア
	c.auth = auth.NewManager(auth.NewService(client), auth.NewSessionStore(kv), logger)

	// 5. ドメインサービスと一覧ストア
	orderSvc := order.NewService(client)
	walletSvc := wallet.NewService(client)
	inviteSvc := invite.NewService(client)
	lotterySvc := lottery.NewService(client)
	checkinSvc := checkin.NewService(client)
	vipSvc := vip.NewService(client)

	listOpts := []pager.Option{
		pager.WithPageSize(cfg.PageSize),
		pager.WithLogger(logger),
		pager.WithMetrics(collector),
	}
	c.lists = pager.NewRegistry(
		order.NewList(orderSvc, listOpts...),
		wallet.NewTransactionsList(walletSvc, listOpts...),
		wallet.NewRebatesList(walletSvc, listOpts...),
		invite.NewDetailsList(inviteSvc, listOpts...),
		lottery.NewLogsList(lotterySvc, listOpts...),
		checkin.NewLogsList(checkinSvc, listOpts...),
		vip.NewLogsList(vipSvc, listOpts...),
		vip.NewPointLogsList(vipSvc, listOpts...),
	)
	c.balance = wallet.NewBalanceStore(walletSvc, logger)

	// 6. セッション期限切れとログアウトの連動
	client.OnSessionExpired(func() {
		collector.RecordSessionExpired()
		c.auth.HandleSessionExpired(context.Background())
	})
	c.auth.OnSignedOut(c.lists.ResetAll)
	c.auth.OnSignedOut(c.balance.Reset)

	// 7. アプリ情報と起動処理
	c.appStore = appinfo.NewStore(appinfo.NewService(client), flags, info, security.NewContentSanitizer(), guard, logger)
	tasks := bootstrap.DefaultTasks(bootstrap.Deps{
		AppInfo: c.appStore,
		LoadConfig: func(ctx context.Context) (bool, error) {
			st, err := c.appStore.LoadConfig(ctx)
			return st.Required, err
		},
		Push:         push.NewRegistrar(client),
		PushToken:    cfg.PushToken,
		Platform:     cfg.AppPlatform,
		DeviceID:     flags.DeviceID,
		SessionToken: c.auth.Token,
		Logger:       logger,
	})
	c.boot = bootstrap.New(c.auth, tasks, logger, collector)

	// 8. 定期リフレッシュ
	c.refresher = refresh.NewScheduler(c.auth, []refresh.Job{
		{Name: "user", Run: func(ctx context.Context, _ string) error { return c.auth.RefreshUser(ctx) }},
		{Name: "balance", Run: c.balance.Refresh},
	}, logger, 2)

	// 9. ルーター
	c.limiter = middleware.NewActionLimiter(middleware.DefaultActionLimiterConfig())
	c.router = handler.NewRouter(&handler.RouterDeps{
		Session:           c.auth,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		ActionLimiter:     c.limiter,
		Logger:            logger,
		Auth:              c.auth,
		Lists:             c.lists,
		Balance:           c.balance,
		Orders:            orderSvc,
		Lottery:           lotterySvc,
		CheckIn:           checkinSvc,
		VIP:               vipSvc,
		Invite:            inviteSvc,
		App:               c.appStore,
		Bootstrap:         c.boot,
		Links:             route.NewResolver(guard),
		Metrics:           metrics.Handler(reg),
	})

	return c, nil
}
