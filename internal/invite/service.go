// Package invite は招待プログラムの集計と招待ユーザー一覧を扱う。
package invite

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// DetailsListName は招待ユーザー一覧ストアの名前。
const DetailsListName = "invite_details"

const (
	pathSummary = "/invite/summary"
	pathDetails = "/invite/details"
)

// Service は招待系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Summary は招待の集計を取得する。
func (s *Service) Summary(ctx context.Context, token string) (*model.InviteSummary, error) {
	sum, err := apiclient.Call[model.InviteSummary](ctx, s.api, pathSummary, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Details はpage番目の招待ユーザー一覧を取得する。
func (s *Service) Details(ctx context.Context, token string, page, pageSize int) ([]model.InviteDetail, error) {
	return apiclient.FetchPage[model.InviteDetail](ctx, s.api, pathDetails, token, page, pageSize)
}

// NewDetailsList は招待ユーザー一覧のページングストアを生成する。
func NewDetailsList(svc *Service, opts ...pager.Option) *pager.List[model.InviteDetail] {
	return pager.New(DetailsListName, svc.Details, opts...)
}
