package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/giftdesk/internal/kvstore"
	"github.com/hitoshi/giftdesk/internal/model"
)

// SessionKey はセッションを保存する固定キー。
const SessionKey = "user_session"

// SessionStore はセッションをキーバリューストアへ永続化する。
type SessionStore struct {
	kv  kvstore.Store
	now func() time.Time
}

// NewSessionStore はSessionStoreを生成する。
func NewSessionStore(kv kvstore.Store) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// Load は保存済みセッションを返す。保存されていない場合はnilを返す。
// トークンが空のセッションは保存されていないものとして扱う。
func (s *SessionStore) Load(ctx context.Context) (*model.Session, error) {
	var sess model.Session
	ok, err := kvstore.GetJSON(ctx, s.kv, SessionKey, &sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok || sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save はセッションを保存する。
func (s *SessionStore) Save(ctx context.Context, token string, profile model.UserProfile) error {
	sess := model.Session{Token: token, Profile: profile, SavedAt: s.now()}
	if err := kvstore.SetJSON(ctx, s.kv, SessionKey, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear は保存済みセッションを削除する。
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
