// Package push はプッシュ通知トークンの登録と、
// 通知ペイロードのactionから遷移先への変換を扱う。
package push

import (
	"context"
	"errors"
	"strings"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/route"
)

const pathRegister = "/push/register"

// ErrNoPushToken はプッシュトークンが設定されていないことを表す。
var ErrNoPushToken = errors.New("push token is not configured")

type registerRequest struct {
	Token     string `json:"token,omitempty"`
	PushToken string `json:"pushToken"`
	DeviceID  string `json:"deviceId"`
	Platform  string `json:"platform"`
}

// Registrar はプッシュトークンをバックエンドに登録する。
type Registrar struct {
	api apiclient.Poster
}

// NewRegistrar はRegistrarを生成する。
func NewRegistrar(api apiclient.Poster) *Registrar {
	return &Registrar{api: api}
}

// Register はプッシュトークンを登録する。
// sessionTokenは未ログインなら空でよい。
func (r *Registrar) Register(ctx context.Context, sessionToken, pushToken, deviceID, platform string) error {
	if strings.TrimSpace(pushToken) == "" {
		return ErrNoPushToken
	}
	return r.api.Post(ctx, pathRegister, registerRequest{
		Token:     sessionToken,
		PushToken: pushToken,
		DeviceID:  deviceID,
		Platform:  platform,
	}, nil)
}

// Payload は受信した通知のデータ部分。
type Payload struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params,omitempty"`
}

// actions は通知のactionからルートコードへの変換表。
var actions = map[string]string{
	"order_status":   "order_detail",
	"order_rejected": "order_detail",
	"order_complete": "order_detail",
	"wallet_credit":  "wallet",
	"withdraw_done":  "transactions",
	"rebate":         "rebates",
	"invite_reward":  "invite",
	"lottery":        "lottery",
	"checkin_remind": "checkin",
	"vip_upgrade":    "vip",
	"rate_update":    "rates",
	"promo":          "home",
}

// Destination は通知タップ時の遷移先。
type Destination struct {
	route.Target
	Params map[string]string `json:"params,omitempty"`
}

// RouteFor は通知ペイロードを遷移先に変換する。未知のactionはHomeにフォールバックする。
func RouteFor(p Payload) Destination {
	code, ok := actions[strings.ToLower(strings.TrimSpace(p.Action))]
	if !ok {
		return Destination{Target: route.Target{Code: p.Action, Path: route.Home, Fallback: true}}
	}
	return Destination{Target: route.Resolve(code), Params: p.Params}
}
