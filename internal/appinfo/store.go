package appinfo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/security"
	"github.com/hitoshi/giftdesk/internal/state"
)

// LinkValidator は外部リンクを検証する。
type LinkValidator interface {
	ValidateLink(rawURL string) error
}

// State はアプリ情報ストアの状態。
type State struct {
	Countries           []model.Country  `json:"countries"`
	Config              *model.AppConfig `json:"config"`
	Update              *UpdateStatus    `json:"update"`
	CompletedOnboarding bool             `json:"completedOnboarding"`
}

// Store は国一覧・アプリ設定・アップデート判定・オンボーディング状態を保持する。
type Store struct {
	api       API
	flags     *Flags
	info      ClientInfo
	sanitizer security.Sanitizer
	links     LinkValidator
	logger    *slog.Logger
	state     *state.Container[State]
}

// NewStore はStoreを生成する。
func NewStore(api API, flags *Flags, info ClientInfo, sanitizer security.Sanitizer, links LinkValidator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:       api,
		flags:     flags,
		info:      info,
		sanitizer: sanitizer,
		links:     links,
		logger:    logger,
		state:     state.New(State{}),
	}
}

// Info はアプリ自身のバージョンとプラットフォームを返す。
func (s *Store) Info() ClientInfo { return s.info }

// Snapshot は現在の状態のコピーを返す。
func (s *Store) Snapshot() State {
	st := s.state.Get()
	st.Countries = slices.Clone(st.Countries)
	return st
}

// Subscribe は状態変更を購読する。
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// LoadCountries は国一覧を取得する。
func (s *Store) LoadCountries(ctx context.Context) error {
	countries, err := s.api.Countries(ctx)
	if err != nil {
		return fmt.Errorf("load countries: %w", err)
	}
	s.state.Update(func(st *State) bool {
		st.Countries = countries
		return true
	})
	return nil
}

// LoadConfig はアプリ設定を取得し、アップデート判定を行う。
// ポップアップ本文はサニタイズし、検証に通らない外部リンクは除去する。
func (s *Store) LoadConfig(ctx context.Context) (UpdateStatus, error) {
	cfg, err := s.api.AppConfig(ctx, s.info)
	if err != nil {
		return UpdateStatus{}, fmt.Errorf("load app config: %w", err)
	}
	s.clean(cfg)

	update := CheckUpdate(s.info.Version, *cfg)
	s.state.Update(func(st *State) bool {
		st.Config = cfg
		st.Update = &update
		return true
	})
	if update.Required {
		s.logger.Warn("アプリのバージョンが最低サポートバージョン未満です",
			slog.String("current", s.info.Version),
			slog.String("min", cfg.MinVersion),
		)
	}
	return update, nil
}

func (s *Store) clean(cfg *model.AppConfig) {
	if cfg.Popup != nil {
		p := *cfg.Popup
		p.Title = s.sanitizer.Text(p.Title)
		p.Content = s.sanitizer.HTML(p.Content)
		cfg.Popup = &p
	}

	banners := make([]model.Banner, 0, len(cfg.Banners))
	for _, b := range cfg.Banners {
		if b.Link != "" {
			if err := s.links.ValidateLink(b.Link); err != nil {
				s.logger.Warn("安全でないバナーリンクを除去しました",
					slog.String("banner_id", b.ID),
					slog.String("error", err.Error()),
				)
				b.Link = ""
			}
		}
		banners = append(banners, b)
	}
	cfg.Banners = banners

	if cfg.UpdateURL != "" {
		if err := s.links.ValidateLink(cfg.UpdateURL); err != nil {
			s.logger.Warn("安全でないアップデートURLを除去しました", slog.String("error", err.Error()))
			cfg.UpdateURL = ""
		}
	}
	if cfg.CustomerServiceURL != "" {
		if err := s.links.ValidateLink(cfg.CustomerServiceURL); err != nil {
			s.logger.Warn("安全でないカスタマーサービスURLを除去しました", slog.String("error", err.Error()))
			cfg.CustomerServiceURL = ""
		}
	}
}

// LoadFlags は端末ローカルのフラグを読み込む。
func (s *Store) LoadFlags(ctx context.Context) error {
	done, err := s.flags.CompletedOnboarding(ctx)
	if err != nil {
		return fmt.Errorf("read onboarding flag: %w", err)
	}
	s.state.Update(func(st *State) bool {
		st.CompletedOnboarding = done
		return true
	})
	return nil
}

// CompleteOnboarding はオンボーディング完了を保存する。
func (s *Store) CompleteOnboarding(ctx context.Context) error {
	if err := s.flags.SetCompletedOnboarding(ctx, true); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	s.state.Update(func(st *State) bool {
		st.CompletedOnboarding = true
		return true
	})
	return nil
}

// TrackFirstOpen は初回起動イベントを1度だけ送信する。
// 送信済みなら何もせず、送信に失敗した場合はフラグを立てないので次回起動時に再送される。
func (s *Store) TrackFirstOpen(ctx context.Context) error {
	tracked, err := s.flags.TrackedFirstOpen(ctx)
	if err != nil {
		return fmt.Errorf("read first-open flag: %w", err)
	}
	if tracked {
		return nil
	}
	deviceID, err := s.flags.DeviceID(ctx)
	if err != nil {
		return err
	}
	if err := s.api.TrackFirstOpen(ctx, deviceID, s.info); err != nil {
		return fmt.Errorf("track first open: %w", err)
	}
	if err := s.flags.MarkFirstOpenTracked(ctx); err != nil {
		return fmt.Errorf("save first-open flag: %w", err)
	}
	s.logger.Info("初回起動イベントを送信しました", slog.String("device_id", deviceID))
	return nil
}
