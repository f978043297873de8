// Package vip はVIPランク情報と経験値・ポイントの変動履歴を扱う。
package vip

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// 一覧ストアの名前
const (
	LogsListName      = "vip_logs"
	PointLogsListName = "point_logs"
)

const (
	pathInfo      = "/vip/info"
	pathLogs      = "/vip/logs"
	pathPointLogs = "/vip/point-logs"
)

// Service はVIP系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Info はVIPランク情報を取得する。
func (s *Service) Info(ctx context.Context, token string) (*model.VIPInfo, error) {
	info, err := apiclient.Call[model.VIPInfo](ctx, s.api, pathInfo, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Logs はpage番目のVIP経験値履歴を取得する。
func (s *Service) Logs(ctx context.Context, token string, page, pageSize int) ([]model.VIPLog, error) {
	return apiclient.FetchPage[model.VIPLog](ctx, s.api, pathLogs, token, page, pageSize)
}

// PointLogs はpage番目のポイント履歴を取得する。
func (s *Service) PointLogs(ctx context.Context, token string, page, pageSize int) ([]model.PointLog, error) {
	return apiclient.FetchPage[model.PointLog](ctx, s.api, pathPointLogs, token, page, pageSize)
}

// NewLogsList はVIP経験値履歴のページングストアを生成する。
func NewLogsList(svc *Service, opts ...pager.Option) *pager.List[model.VIPLog] {
	return pager.New(LogsListName, svc.Logs, opts...)
}

// NewPointLogsList はポイント履歴のページングストアを生成する。
func NewPointLogsList(svc *Service, opts ...pager.Option) *pager.List[model.PointLog] {
	return pager.New(PointLogsListName, svc.PointLogs, opts...)
}
