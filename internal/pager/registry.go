package pager

import (
	"fmt"
	"sort"
	"sync"
)

// Registry は名前付きのページング一覧ストアをまとめて保持する。
// ログアウト時の一括リセットとゲートウェイからの名前解決に使う。
type Registry struct {
	mu    sync.RWMutex
	lists map[string]Controller
}

// NewRegistry はRegistryを生成する。
func NewRegistry(lists ...Controller) *Registry {
	r := &Registry{lists: make(map[string]Controller)}
	for _, l := range lists {
		r.MustRegister(l)
	}
	return r
}

// MustRegister は一覧を登録する。同名の一覧が既にある場合はpanicする。
func (r *Registry) MustRegister(l Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.lists[l.Name()]; exists {
		panic(fmt.Sprintf("pager: duplicate list name %q", l.Name()))
	}
	r.lists[l.Name()] = l
}

// Get は名前から一覧を引く。
func (r *Registry) Get(name string) (Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lists[name]
	return l, ok
}

// Names は登録済みの一覧名を昇順で返す。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.lists))
	for name := range r.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetAll は全ての一覧を初期状態に戻す。
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.lists {
		l.Reset()
	}
}
