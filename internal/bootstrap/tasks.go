package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
)

// 補助タスクの名前
const (
	TaskCountries    = "countries"
	TaskAppConfig    = "app_config"
	TaskFlags        = "flags"
	TaskPushRegister = "push_register"
	TaskFirstOpen    = "first_open"
)

// AppInfo は補助タスクが使うアプリ情報ストアの操作。
type AppInfo interface {
	LoadCountries(ctx context.Context) error
	LoadFlags(ctx context.Context) error
	TrackFirstOpen(ctx context.Context) error
}

// ConfigLoader はアプリ設定を読み込み、アップデートが必須かを返す。
type ConfigLoader func(ctx context.Context) (required bool, err error)

// PushRegistrar はプッシュトークンを登録する。
type PushRegistrar interface {
	Register(ctx context.Context, sessionToken, pushToken, deviceID, platform string) error
}

// Deps は標準の補助タスクの依存。
type Deps struct {
	AppInfo    AppInfo
	LoadConfig ConfigLoader
	Push       PushRegistrar
	PushToken  string
	Platform   string
	DeviceID   func(ctx context.Context) (string, error)
	// SessionToken は登録時点のセッショントークンを返す。未ログインなら空。
	SessionToken func() string
	Logger       *slog.Logger
}

// DefaultTasks は標準の補助タスクを返す。
// 国一覧の取得、アプリ設定の取得とアップデート判定、フラグの読み込み、
// プッシュトークンの登録、初回起動計測の5つ。
func DefaultTasks(d Deps) []Task {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return []Task{
		{Name: TaskCountries, Run: d.AppInfo.LoadCountries},
		{Name: TaskAppConfig, Run: func(ctx context.Context) error {
			required, err := d.LoadConfig(ctx)
			if err != nil {
				return err
			}
			if required {
				logger.Warn("アップデートが必須です")
			}
			return nil
		}},
		{Name: TaskFlags, Run: d.AppInfo.LoadFlags},
		{Name: TaskPushRegister, Run: func(ctx context.Context) error {
			if d.PushToken == "" {
				return fmt.Errorf("%w: no push token", ErrSkipped)
			}
			deviceID, err := d.DeviceID(ctx)
			if err != nil {
				return err
			}
			var token string
			if d.SessionToken != nil {
				token = d.SessionToken()
			}
			return d.Push.Register(ctx, token, d.PushToken, deviceID, d.Platform)
		}},
		{Name: TaskFirstOpen, Run: d.AppInfo.TrackFirstOpen},
	}
}
