package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/wallet"
)

// BalanceSource はウォレット残高ストア。
type BalanceSource interface {
	Snapshot() wallet.BalanceState
	Refresh(ctx context.Context, token string) error
}

// OrderDetailer は注文詳細を取得する。
type OrderDetailer interface {
	Detail(ctx context.Context, token, orderID string) (*model.OrderDetail, error)
}

// LotteryService は抽選の情報取得と抽選を行う。
type LotteryService interface {
	Info(ctx context.Context, token string) (*model.LotteryInfo, error)
	Draw(ctx context.Context, token string) (*model.DrawResult, error)
}

// CheckInService はチェックイン状況の取得とチェックインを行う。
type CheckInService interface {
	Status(ctx context.Context, token string) (*model.CheckInStatus, error)
	CheckIn(ctx context.Context, token string) (*model.CheckInResult, error)
}

// VIPService はVIP情報を取得する。
type VIPService interface {
	Info(ctx context.Context, token string) (*model.VIPInfo, error)
}

// InviteService は招待の集計を取得する。
type InviteService interface {
	Summary(ctx context.Context, token string) (*model.InviteSummary, error)
}

// AccountHandler はログインが必要な単発取得系エンドポイントのハンドラー。
type AccountHandler struct {
	balance BalanceSource
	orders  OrderDetailer
	lottery LotteryService
	checkin CheckInService
	vip     VIPService
	invite  InviteService
	logger  *slog.Logger
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(
	balance BalanceSource,
	orders OrderDetailer,
	lottery LotteryService,
	checkin CheckInService,
	vip VIPService,
	invite InviteService,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		balance: balance,
		orders:  orders,
		lottery: lottery,
		checkin: checkin,
		vip:     vip,
		invite:  invite,
		logger:  logger,
	}
}

// Balance は残高ストアの状態を返す。
// 未取得またはrefresh=trueの場合は取得してから返す。
// GET /api/wallet/balance
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("refresh") == "true" || h.balance.Snapshot().Balance == nil {
		if err := h.balance.Refresh(r.Context(), token); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.balance.Snapshot())
}

// OrderDetail は注文詳細を返す。
// GET /api/orders/{id}
func (h *AccountHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.OrderDetail](w, h.logger)(h.orders.Detail(r.Context(), token, chi.URLParam(r, "id")))
}

// Lottery は抽選情報を返す。
// GET /api/lottery
func (h *AccountHandler) Lottery(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.LotteryInfo](w, h.logger)(h.lottery.Info(r.Context(), token))
}

// Draw は抽選を1回行う。
// POST /api/lottery/draw
func (h *AccountHandler) Draw(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.DrawResult](w, h.logger)(h.lottery.Draw(r.Context(), token))
}

// CheckInStatus はチェックイン状況を返す。
// GET /api/checkin
func (h *AccountHandler) CheckInStatus(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.CheckInStatus](w, h.logger)(h.checkin.Status(r.Context(), token))
}

// CheckIn は本日のチェックインを行う。
// POST /api/checkin
func (h *AccountHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.CheckInResult](w, h.logger)(h.checkin.CheckIn(r.Context(), token))
}

// VIP はVIP情報を返す。
// GET /api/vip
func (h *AccountHandler) VIP(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.VIPInfo](w, h.logger)(h.vip.Info(r.Context(), token))
}

// InviteSummary は招待の集計を返す。
// GET /api/invite/summary
func (h *AccountHandler) InviteSummary(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	respondWith[model.InviteSummary](w, h.logger)(h.invite.Summary(r.Context(), token))
}

// respondWith は(結果, エラー)をそのまま受け取ってレスポンスを書き込む関数を返す。
func respondWith[T any](w http.ResponseWriter, logger *slog.Logger) func(*T, error) {
	return func(v *T, err error) {
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
