// Package model はドメインモデルを定義する。
package model

// InviteSummary は招待プログラムの集計。
type InviteSummary struct {
	InviteCode    string  `json:"inviteCode"`
	InviteLink    string  `json:"inviteLink"`
	InvitedCount  int     `json:"invitedCount"`
	TradedCount   int     `json:"tradedCount"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// InviteDetail は招待したユーザー1件。
type InviteDetail struct {
	UserID     string  `json:"userId"`
	Nickname   string  `json:"nickname"`
	RegisterAt string  `json:"registerAt"`
	TradeCount int     `json:"tradeCount"`
	Earnings   float64 `json:"earnings"`
}

// LotteryPrize は抽選の景品。
type LotteryPrize struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// LotteryInfo は抽選画面の情報。
type LotteryInfo struct {
	Prizes         []LotteryPrize `json:"prizes"`
	RemainingDraws int            `json:"remainingDraws"`
	CostPoints     int64          `json:"costPoints"`
	Rules          string         `json:"rules"`
}

// DrawResult は1回の抽選結果。
type DrawResult struct {
	Prize          LotteryPrize `json:"prize"`
	RemainingDraws int          `json:"remainingDraws"`
}

// LotteryLog は抽選履歴1件。
type LotteryLog struct {
	ID        string  `json:"id"`
	PrizeName string  `json:"prizeName"`
	PrizeType string  `json:"prizeType"`
	Value     float64 `json:"value"`
	CreatedAt string  `json:"createdAt"`
}

// CheckInStatus はチェックイン（連続ログインボーナス）の状態。
type CheckInStatus struct {
	CheckedInToday bool    `json:"checkedInToday"`
	StreakDays     int     `json:"streakDays"`
	Rewards        []int64 `json:"rewards"`
}

// CheckInResult はチェックイン実行結果。
type CheckInResult struct {
	RewardPoints int64 `json:"rewardPoints"`
	StreakDays   int   `json:"streakDays"`
}

// CheckInLog はチェックイン履歴1件。
type CheckInLog struct {
	ID           string `json:"id"`
	Day          int    `json:"day"`
	RewardPoints int64  `json:"rewardPoints"`
	CreatedAt    string `json:"createdAt"`
}

// VIPInfo はVIPランクの情報。
type VIPInfo struct {
	Level        int      `json:"level"`
	LevelName    string   `json:"levelName"`
	Exp          int64    `json:"exp"`
	NextLevelExp int64    `json:"nextLevelExp"`
	Benefits     []string `json:"benefits"`
}

// VIPLog はVIP経験値の変動履歴1件。
type VIPLog struct {
	ID        string `json:"id"`
	Change    int64  `json:"change"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"createdAt"`
}

// PointLog はポイントの変動履歴1件。
type PointLog struct {
	ID        string `json:"id"`
	Change    int64  `json:"change"`
	Balance   int64  `json:"balance"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"createdAt"`
}
