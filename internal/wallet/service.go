// Package wallet はウォレット残高と入出金・リベート履歴を扱う。
package wallet

import (
	"context"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// 一覧ストアの名前
const (
	TransactionsListName = "wallet_transactions"
	RebatesListName      = "rebates"
)

const (
	pathBalance      = "/wallet/balance"
	pathTransactions = "/wallet/transactions"
	pathRebates      = "/wallet/rebates"
)

// Service はウォレット系エンドポイントのラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Balance は残高を取得する。
func (s *Service) Balance(ctx context.Context, token string) (*model.WalletBalance, error) {
	b, err := apiclient.Call[model.WalletBalance](ctx, s.api, pathBalance, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Transactions はpage番目の入出金履歴を取得する。
func (s *Service) Transactions(ctx context.Context, token string, page, pageSize int) ([]model.WalletTransaction, error) {
	return apiclient.FetchPage[model.WalletTransaction](ctx, s.api, pathTransactions, token, page, pageSize)
}

// Rebates はpage番目のリベート履歴を取得する。
func (s *Service) Rebates(ctx context.Context, token string, page, pageSize int) ([]model.Rebate, error) {
	return apiclient.FetchPage[model.Rebate](ctx, s.api, pathRebates, token, page, pageSize)
}

// NewTransactionsList は入出金履歴のページングストアを生成する。
func NewTransactionsList(svc *Service, opts ...pager.Option) *pager.List[model.WalletTransaction] {
	return pager.New(TransactionsListName, svc.Transactions, opts...)
}

// NewRebatesList はリベート履歴のページングストアを生成する。
func NewRebatesList(svc *Service, opts ...pager.Option) *pager.List[model.Rebate] {
	return pager.New(RebatesListName, svc.Rebates, opts...)
}
