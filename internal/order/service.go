// Package order はギフトカード注文の一覧と詳細を扱う。
package order

import (
	"context"
	"strings"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// ListName は注文一覧ストアの名前。
const ListName = "orders"

const (
	pathList   = "/order/list"
	pathDetail = "/order/detail"
)

// ErrEmptyOrderID は注文IDが指定されていないことを表す。
var ErrEmptyOrderID = model.NewInvalidRequestError("order id is required")

type detailRequest struct {
	Token   string `json:"token"`
	OrderID string `json:"orderId"`
}

// Service は注文系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// List はpage番目の注文一覧を取得する。
func (s *Service) List(ctx context.Context, token string, page, pageSize int) ([]model.Order, error) {
	return apiclient.FetchPage[model.Order](ctx, s.api, pathList, token, page, pageSize)
}

// Detail は注文詳細を取得する。
func (s *Service) Detail(ctx context.Context, token, orderID string) (*model.OrderDetail, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrEmptyOrderID
	}
	d, err := apiclient.Call[model.OrderDetail](ctx, s.api, pathDetail, detailRequest{Token: token, OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// NewList は注文一覧のページングストアを生成する。
func NewList(svc *Service, opts ...pager.Option) *pager.List[model.Order] {
	return pager.New(ListName, svc.List, opts...)
}
