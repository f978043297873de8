// Package app はコマンドの解析と依存関係の組み立て、各起動モードの実行を行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/giftdesk/internal/config"
	"github.com/hitoshi/giftdesk/internal/database"
	"github.com/hitoshi/giftdesk/internal/logger"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、.envと環境変数からConfigを読み込む。
// 読み込んだLOG_LEVELでロガーを設定し直す。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// 2. .envファイルがあれば読み込む（既存の環境変数が優先）
	if err := config.LoadEnvFile(os.Getenv("GIFTDESK_ENV_FILE")); err != nil {
		return nil, nil, err
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel)), nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8787"
		}
		return runHealthcheck(port)
	}

	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("アプリケーションを起動します",
		slog.String("command", string(cmd)),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("store_backend", cfg.StoreBackend),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, log)
	case CommandBootstrap:
		return runBootstrap(cfg, log)
	default:
		return runServe(cfg, log)
	}
}

// build はkvストアを開いて依存関係を組み立てる。
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*components, error) {
	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := wire(ctx, cfg, kv, log)
	if err != nil {
		if closeKV != nil {
			closeKV()
		}
		return nil, err
	}
	if closeKV != nil {
		c.closers = append(c.closers, closeKV)
	}
	return c, nil
}

// runServe はローカルゲートウェイを起動する。
// 起動処理とリフレッシュワーカーをバックグラウンドで開始し、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	go c.boot.Run(ctx)
	go c.refresher.Start(ctx, cfg.SessionRefreshInterval)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:      c.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("ローカルゲートウェイを起動しました", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	}
	log.Info("ローカルゲートウェイを停止します")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("ローカルゲートウェイを停止しました")
	return nil
}

// runBootstrap は起動処理を1回実行し、全タスクの完了を待って診断結果をログに出力する。
func runBootstrap(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	c.boot.Run(ctx)
	report := c.boot.Wait()

	st := c.auth.State()
	log.Info("起動処理が完了しました",
		slog.Bool("authenticated", st.IsAuthenticated),
		slog.Any("report", report),
	)
	return nil
}

// runMigrate はキーバリューストア用のマイグレーションを実行する。
// STORE_BACKEND=postgres の場合のみ意味を持つ。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}
	log.Info("マイグレーションを実行します",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("マイグレーションが完了しました")
	return nil
}

// runHealthcheck は /health にHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://127.0.0.1:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
