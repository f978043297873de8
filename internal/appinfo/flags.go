package appinfo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/giftdesk/internal/kvstore"
)

// 端末ローカルに保存するキー
const (
	KeyCompletedOnboarding = "hasCompletedOnboarding"
	KeyTrackedFirstOpen    = "hasTrackedFirstOpen"
	KeyDeviceID            = "deviceId"
)

// Flags は起動時に1度だけ読むフラグと端末IDを保持する。
type Flags struct {
	kv kvstore.Store

	mu       sync.Mutex
	deviceID string
}

// NewFlags はFlagsを生成する。
func NewFlags(kv kvstore.Store) *Flags {
	return &Flags{kv: kv}
}

// CompletedOnboarding はオンボーディング完了済みかを返す。
func (f *Flags) CompletedOnboarding(ctx context.Context) (bool, error) {
	return kvstore.GetBool(ctx, f.kv, KeyCompletedOnboarding)
}

// SetCompletedOnboarding はオンボーディング完了フラグを保存する。
func (f *Flags) SetCompletedOnboarding(ctx context.Context, v bool) error {
	return kvstore.SetBool(ctx, f.kv, KeyCompletedOnboarding, v)
}

// TrackedFirstOpen は初回起動イベントを送信済みかを返す。
func (f *Flags) TrackedFirstOpen(ctx context.Context) (bool, error) {
	return kvstore.GetBool(ctx, f.kv, KeyTrackedFirstOpen)
}

// MarkFirstOpenTracked は初回起動イベントの送信済みフラグを保存する。
func (f *Flags) MarkFirstOpenTracked(ctx context.Context) error {
	return kvstore.SetBool(ctx, f.kv, KeyTrackedFirstOpen, true)
}

// DeviceID は端末IDを返す。未生成の場合はUUIDを生成して保存する。
func (f *Flags) DeviceID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deviceID != "" {
		return f.deviceID, nil
	}

	raw, ok, err := f.kv.Get(ctx, KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}
	if ok && len(raw) > 0 {
		f.deviceID = string(raw)
		return f.deviceID, nil
	}

	id := uuid.New().String()
	if err := f.kv.Set(ctx, KeyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}
	f.deviceID = id
	return id, nil
}
