package apiclient

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/hitoshi/giftdesk/internal/model"
)

// pageData はページング系エンドポイントのdata部分。
// バックエンドは配列そのもの、または {"list": [...]} のどちらかを返す。
type pageData[T any] struct {
	items []T
}

func (p *pageData[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &p.items)
	}
	var wrapped struct {
		List []T `json:"list"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	p.items = wrapped.List
	return nil
}

// FetchPage はページング系エンドポイントからpage番目（0始まり）のページを取得する。
func FetchPage[T any](ctx context.Context, p Poster, path, token string, page, pageSize int) ([]T, error) {
	var data pageData[T]
	req := model.PageRequest{Token: token, Page: page, PageSize: pageSize}
	if err := p.Post(ctx, path, req, &data); err != nil {
		return nil, err
	}
	return data.items, nil
}

// Call はpathへbodyをPOSTし、dataをT型で返す。
func Call[T any](ctx context.Context, p Poster, path string, body any) (T, error) {
	var out T
	if err := p.Post(ctx, path, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
