// Package model はドメインモデルを定義する。
package model

// WalletBalance はウォレット残高。
type WalletBalance struct {
	Balance       float64 `json:"balance"`
	FrozenBalance float64 `json:"frozenBalance"`
	RebateBalance float64 `json:"rebateBalance"`
	Currency      string  `json:"currency"`
}

// WalletTransaction はウォレットの入出金履歴1件。
type WalletTransaction struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Balance   float64 `json:"balance"`
	Remark    string  `json:"remark"`
	CreatedAt string  `json:"createdAt"`
}

// Rebate は招待・取引によるリベート履歴1件。
type Rebate struct {
	ID         string  `json:"id"`
	FromUser   string  `json:"fromUser"`
	OrderNo    string  `json:"orderNo"`
	Amount     float64 `json:"amount"`
	RebateRate float64 `json:"rebateRate"`
	CreatedAt  string  `json:"createdAt"`
}
