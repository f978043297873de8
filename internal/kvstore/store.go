// Package kvstore は端末ローカルのキーバリューストアを提供する。
// セッションと起動時に1度だけ読むフラグ類を保存する。
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store はキーバリューストアのインターフェース。
type Store interface {
	// Get はキーの値を返す。存在しない場合はok=falseを返す。
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set はキーに値を保存する。
	Set(ctx context.Context, key string, value []byte) error
	// Delete はキーを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error
}

// GetJSON はキーの値をJSONとしてdestにデコードする。
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON はvalueをJSONにエンコードして保存する。
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// GetBool はフラグを読む。未設定の場合はfalse。
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return string(raw) == "true", nil
}

// SetBool はフラグを保存する。
func SetBool(ctx context.Context, s Store, key string, v bool) error {
	if v {
		return s.Set(ctx, key, []byte("true"))
	}
	return s.Set(ctx, key, []byte("false"))
}

// MemoryStore はプロセス内メモリのStore。テストと一時利用向け。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get はキーの値を返す。
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set はキーに値を保存する。
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete はキーを削除する。
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
