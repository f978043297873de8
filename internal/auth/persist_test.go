package auth

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/giftdesk/internal/kvstore"
	"github.com/hitoshi/giftdesk/internal/model"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	store := NewSessionStore(kv)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	sess, err := store.Load(ctx)
	if err != nil || sess != nil {
		t.Fatalf("空のストアのLoad = %v, %v", sess, err)
	}

	if err := store.Save(ctx, "tok", model.UserProfile{ID: "u1"}); err != nil {
		t.Fatalf("Save がエラーを返した: %v", err)
	}
	sess, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load がエラーを返した: %v", err)
	}
	if sess.Token != "tok" || sess.Profile.ID != "u1" || !sess.SavedAt.Equal(fixed) {
		t.Errorf("session = %+v", sess)
	}

	if _, ok, _ := kv.Get(ctx, SessionKey); !ok {
		t.Errorf("キー %q に保存されていない", SessionKey)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear がエラーを返した: %v", err)
	}
	if sess, _ := store.Load(ctx); sess != nil {
		t.Error("Clear後もセッションが残っている")
	}
}

func TestSessionStore_EmptyTokenIsAbsent(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	kv.Set(context.Background(), SessionKey, []byte(`{"token":"","profile":{"id":"u1"}}`))

	sess, err := NewSessionStore(kv).Load(context.Background())
	if err != nil || sess != nil {
		t.Errorf("Load = %v, %v, want nil, nil", sess, err)
	}
}

func TestSessionStore_CorruptValue(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	kv.Set(context.Background(), SessionKey, []byte(`not json`))

	if _, err := NewSessionStore(kv).Load(context.Background()); err == nil {
		t.Error("壊れた値でエラーにならなかった")
	}
}
