// Package model はドメインモデルを定義する。
package model

import "encoding/json"

// Envelope はバックエンドの全レスポンスが従う統一フォーマット。
// success=false の場合、msg が人間向けの理由を表す。
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
}

// PageRequest はページング系エンドポイントの共通リクエストボディ。
// Page は0始まり。
type PageRequest struct {
	Token    string `json:"token"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// TokenRequest はトークンのみを送る認証付きエンドポイントのリクエストボディ。
type TokenRequest struct {
	Token string `json:"token"`
}
