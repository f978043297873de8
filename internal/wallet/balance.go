package wallet

import (
	"context"
	"log/slog"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/state"
)

// BalanceState は残高ストアの状態。
type BalanceState struct {
	Balance   *model.WalletBalance `json:"balance"`
	IsLoading bool                 `json:"isLoading"`
	Error     string               `json:"error,omitempty"`

	// generation はResetごとに進み、Reset前に発行した取得の応答を破棄するために使う。
	generation uint64
}

// BalanceStore は残高を保持するストア。
// 取得に失敗しても直前の残高は保持する。
type BalanceStore struct {
	svc    *Service
	logger *slog.Logger
	state  *state.Container[BalanceState]
}

// NewBalanceStore はBalanceStoreを生成する。
func NewBalanceStore(svc *Service, logger *slog.Logger) *BalanceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceStore{svc: svc, logger: logger, state: state.New(BalanceState{})}
}

// Snapshot は現在の状態を返す。
func (b *BalanceStore) Snapshot() BalanceState {
	s := b.state.Get()
	if s.Balance != nil {
		v := *s.Balance
		s.Balance = &v
	}
	return s
}

// Subscribe は状態変更を購読する。
func (b *BalanceStore) Subscribe(fn func(BalanceState)) (unsubscribe func()) {
	return b.state.Subscribe(fn)
}

// Refresh は残高を再取得する。
// セッション期限切れの場合はErrorを設定しない。
// 取得中にResetされた場合、応答は状態に反映しない。
func (b *BalanceStore) Refresh(ctx context.Context, token string) error {
	var gen uint64
	b.state.Update(func(s *BalanceState) bool {
		s.IsLoading = true
		s.Error = ""
		gen = s.generation
		return true
	})

	bal, err := b.svc.Balance(ctx, token)

	applied := b.state.Update(func(s *BalanceState) bool {
		if s.generation != gen {
			return false
		}
		s.IsLoading = false
		if err != nil {
			if !model.IsSessionExpired(err) {
				s.Error = model.UserMessage(err)
			}
			return true
		}
		s.Balance = bal
		return true
	})
	if !applied {
		b.logger.Info("リセット後に届いた残高の応答を破棄しました")
		return err
	}
	if err != nil && !model.IsSessionExpired(err) {
		b.logger.Warn("残高の取得に失敗しました", slog.String("error", err.Error()))
	}
	return err
}

// Reset は状態を初期値に戻す。
func (b *BalanceStore) Reset() {
	b.state.Update(func(s *BalanceState) bool {
		*s = BalanceState{generation: s.generation + 1}
		return true
	})
}
