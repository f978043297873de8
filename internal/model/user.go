// Package model はドメインモデルを定義する。
package model

import "time"

// UserProfile はバックエンドが返すログインユーザーの情報を表す。
type UserProfile struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Nickname    string  `json:"nickname"`
	Avatar      string  `json:"avatar"`
	Phone       string  `json:"phone"`
	CountryCode string  `json:"countryCode"`
	InviteCode  string  `json:"inviteCode"`
	VIPLevel    int     `json:"vipLevel"`
	Points      int64   `json:"points"`
	Balance     float64 `json:"balance"`
}

// Session は端末ローカルに永続化されるログインセッションを表す。
// ログイン・登録・ソーシャル認証の成功時に作成され、
// ログアウトまたはセッション期限切れで破棄される。
type Session struct {
	Token   string      `json:"token"`
	Profile UserProfile `json:"profile"`
	SavedAt time.Time   `json:"savedAt"`
}

// AuthResult はログイン系エンドポイントのdata部分。
type AuthResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
