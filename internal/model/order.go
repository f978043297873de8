// Package model はドメインモデルを定義する。
package model

// OrderStatus はギフトカード取引注文の状態。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReviewing OrderStatus = "reviewing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRejected  OrderStatus = "rejected"
)

// Order はギフトカード売却・両替の注文を表す。
type Order struct {
	ID           string      `json:"id"`
	OrderNo      string      `json:"orderNo"`
	CardName     string      `json:"cardName"`
	CardCategory string      `json:"cardCategory"`
	FaceValue    float64     `json:"faceValue"`
	Currency     string      `json:"currency"`
	Rate         float64     `json:"rate"`
	Amount       float64     `json:"amount"`
	Status       OrderStatus `json:"status"`
	Remark       string      `json:"remark"`
	CreatedAt    string      `json:"createdAt"`
}

// OrderDetail は注文詳細画面のデータ。
type OrderDetail struct {
	Order
	CardImages   []string `json:"cardImages"`
	RejectReason string   `json:"rejectReason"`
	RebateAmount float64  `json:"rebateAmount"`
	CompletedAt  string   `json:"completedAt"`
}
