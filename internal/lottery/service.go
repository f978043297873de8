// Package lottery はポイント抽選の情報取得・抽選・履歴を扱う。
package lottery

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// LogsListName は抽選履歴ストアの名前。
const LogsListName = "lottery_logs"

const (
	pathInfo = "/lottery/info"
	pathDraw = "/lottery/draw"
	pathLogs = "/lottery/logs"
)

// Service は抽選系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Info は景品一覧と残り抽選回数を取得する。
func (s *Service) Info(ctx context.Context, token string) (*model.LotteryInfo, error) {
	info, err := apiclient.Call[model.LotteryInfo](ctx, s.api, pathInfo, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Draw は1回抽選する。ポイントの消費はバックエンドが行う。
func (s *Service) Draw(ctx context.Context, token string) (*model.DrawResult, error) {
	res, err := apiclient.Call[model.DrawResult](ctx, s.api, pathDraw, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Logs はpage番目の抽選履歴を取得する。
func (s *Service) Logs(ctx context.Context, token string, page, pageSize int) ([]model.LotteryLog, error) {
	return apiclient.FetchPage[model.LotteryLog](ctx, s.api, pathLogs, token, page, pageSize)
}

// NewLogsList は抽選履歴のページングストアを生成する。
func NewLogsList(svc *Service, opts ...pager.Option) *pager.List[model.LotteryLog] {
	return pager.New(LogsListName, svc.Logs, opts...)
}
