// Package checkin はデイリーチェックインの状態・実行・履歴を扱う。
package checkin

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// LogsListName はチェックイン履歴ストアの名前。
const LogsListName = "checkin_logs"

const (
	pathStatus = "/checkin/status"
	pathSign   = "/checkin/sign"
	pathLogs   = "/checkin/logs"
)

// Service はチェックイン系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Status は今日のチェックイン状況と連続日数を取得する。
func (s *Service) Status(ctx context.Context, token string) (*model.CheckInStatus, error) {
	st, err := apiclient.Call[model.CheckInStatus](ctx, s.api, pathStatus, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CheckIn はチェックインする。
// 既にチェックイン済みの場合はバックエンドがドメインエラーを返す。
func (s *Service) CheckIn(ctx context.Context, token string) (*model.CheckInResult, error) {
	res, err := apiclient.Call[model.CheckInResult](ctx, s.api, pathSign, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Logs はpage番目のチェックイン履歴を取得する。
func (s *Service) Logs(ctx context.Context, token string, page, pageSize int) ([]model.CheckInLog, error) {
	return apiclient.FetchPage[model.CheckInLog](ctx, s.api, pathLogs, token, page, pageSize)
}

// NewLogsList はチェックイン履歴のページングストアを生成する。
func NewLogsList(svc *Service, opts ...pager.Option) *pager.List[model.CheckInLog] {
	return pager.New(LogsListName, svc.Logs, opts...)
}
