// Package appinfo は国一覧・アプリ設定・強制アップデート判定・
// 初回起動計測と端末ローカルのフラグを扱う。
package appinfo

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
)

const (
	pathCountries      = "/common/countries"
	pathAppConfig      = "/common/app-config"
	pathTrackFirstOpen = "/track/first-open"
)

// ClientInfo はバックエンドに送るアプリ自身の情報。
type ClientInfo struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

type firstOpenRequest struct {
	DeviceID string `json:"deviceId"`
	ClientInfo
}

// API はStoreとブートストラップが必要とするバックエンド呼び出し。
type API interface {
	Countries(ctx context.Context) ([]model.Country, error)
	AppConfig(ctx context.Context, info ClientInfo) (*model.AppConfig, error)
	TrackFirstOpen(ctx context.Context, deviceID string, info ClientInfo) error
}

// Service は共通系エンドポイントのラッパー。いずれもトークン不要。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Countries は国一覧を取得する。
func (s *Service) Countries(ctx context.Context) ([]model.Country, error) {
	return apiclient.Call[[]model.Country](ctx, s.api, pathCountries, nil)
}

// AppConfig はアプリ設定を取得する。
func (s *Service) AppConfig(ctx context.Context, info ClientInfo) (*model.AppConfig, error) {
	cfg, err := apiclient.Call[model.AppConfig](ctx, s.api, pathAppConfig, info)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TrackFirstOpen は初回起動イベントを送信する。
func (s *Service) TrackFirstOpen(ctx context.Context, deviceID string, info ClientInfo) error {
	return s.api.Post(ctx, pathTrackFirstOpen, firstOpenRequest{DeviceID: deviceID, ClientInfo: info}, nil)
}

var _ API = (*Service)(nil)
