// Package state はクライアント側ストアの状態コンテナを提供する。
// 各ストアは自分のContainerを排他的に所有し、外部にはGet/Subscribeのみを公開する。
package state

import "sync"

// Listener は状態変更の通知を受け取る関数。
type Listener[S any] func(S)

// Container は値型Sの状態を保持するスレッドセーフなコンテナ。
// 状態の更新はUpdateを通してのみ行い、更新後の値をリスナーへ通知する。
// リスナーはロックの外で呼ばれるため、リスナー内からGetを呼んでもよい。
type Container[S any] struct {
	mu        sync.RWMutex
	value     S
	nextID    int
	listeners map[int]Listener[S]
}

// New は初期値を持つContainerを生成する。
func New[S any](initial S) *Container[S] {
	return &Container[S]{
		value:     initial,
		listeners: make(map[int]Listener[S]),
	}
}

// Get は現在の状態を返す。
func (c *Container[S]) Get() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set は状態を置き換えてリスナーに通知する。
func (c *Container[S]) Set(v S) {
	c.Update(func(s *S) bool {
		*s = v
		return true
	})
}

// Update は現在の状態のコピーにfnを適用する。
// fnがtrueを返した場合のみコピーを確定してリスナーに通知し、trueを返す。
// 判定と更新が同じロック内で行われるため、check-and-setに使える。
func (c *Container[S]) Update(fn func(s *S) bool) bool {
	c.mu.Lock()
	next := c.value
	if !fn(&next) {
		c.mu.Unlock()
		return false
	}
	c.value = next
	listeners := make([]Listener[S], 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return true
}

// Subscribe はリスナーを登録し、登録解除用の関数を返す。
func (c *Container[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}
