// Package apiclienttest はapiclient.Posterのテスト用実装を提供する。
package apiclienttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hitoshi/giftdesk/internal/apiclient"
)

// Call は記録された1回分の呼び出し。
type Call struct {
	Path string
	Body json.RawMessage
}

// Response はパスごとに返す応答。ErrがnilでなければErrを返す。
type Response struct {
	Data any
	Err  error
}

// Poster はパスごとの応答を返すPosterのフェイク。
// 応答が登録されていないパスにはエラーを返す。
type Poster struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
}

// New はPosterを生成する。
func New() *Poster {
	return &Poster{responses: make(map[string]Response)}
}

// Respond はpathへの呼び出しでdataを返すよう設定する。
func (p *Poster) Respond(path string, data any) *Poster {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[path] = Response{Data: data}
	return p
}

// Fail はpathへの呼び出しでerrを返すよう設定する。
func (p *Poster) Fail(path string, err error) *Poster {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[path] = Response{Err: err}
	return p
}

// Calls は記録された呼び出しのコピーを返す。
func (p *Poster) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// LastBody は最後の呼び出しのボディをmapとして返す。
func (p *Poster) LastBody() map[string]any {
	calls := p.Calls()
	if len(calls) == 0 {
		return nil
	}
	var m map[string]any
	_ = json.Unmarshal(calls[len(calls)-1].Body, &m)
	return m
}

// Post はapiclient.Posterを実装する。
// 応答データは一度JSONに変換してからoutへデコードする。
// Dataがnilの場合はdata:nullと同じくoutを変更しない。
func (p *Poster) Post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.calls = append(p.calls, Call{Path: path, Body: raw})
	resp, ok := p.responses[path]
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("apiclienttest: no response registered for %s", path)
	}
	if resp.Err != nil {
		return resp.Err
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// compile-time interface check
var _ apiclient.Poster = (*Poster)(nil)
