// Package route はバックエンドが配信する内部ルートコードを
// クライアントの画面遷移先に変換する。
package route

import (
	"strings"
)

// Home は未知のコードに対するフォールバック先。
const Home = "/home"

// Target は遷移先。
type Target struct {
	Code string `json:"code"`
	// Path はアプリ内の画面。External がtrueの場合は空。
	Path string `json:"path,omitempty"`
	// URL は外部ブラウザで開くリンク。
	URL string `json:"url,omitempty"`
	// RequiresAuth はログインが必要な画面であることを示す。
	RequiresAuth bool `json:"requiresAuth"`
	External     bool `json:"external"`
	// Fallback は未知のコードのためHomeに置き換えたことを示す。
	Fallback bool `json:"fallback"`
}

type entry struct {
	path         string
	requiresAuth bool
}

// codes は内部ルートコードの変換表。
var codes = map[string]entry{
	"home":         {path: Home},
	"sell":         {path: "/sell", requiresAuth: true},
	"rates":        {path: "/rates"},
	"orders":       {path: "/orders", requiresAuth: true},
	"order_detail": {path: "/orders/detail", requiresAuth: true},
	"wallet":       {path: "/wallet", requiresAuth: true},
	"withdraw":     {path: "/wallet/withdraw", requiresAuth: true},
	"transactions": {path: "/wallet/transactions", requiresAuth: true},
	"rebates":      {path: "/wallet/rebates", requiresAuth: true},
	"invite":       {path: "/invite", requiresAuth: true},
	"lottery":      {path: "/lottery", requiresAuth: true},
	"checkin":      {path: "/checkin", requiresAuth: true},
	"vip":          {path: "/vip", requiresAuth: true},
	"points":       {path: "/vip/points", requiresAuth: true},
	"profile":      {path: "/profile", requiresAuth: true},
	"support":      {path: "/support"},
	"login":        {path: "/login"},
	"register":     {path: "/register"},
}

// LinkValidator は外部リンクを検証する。
type LinkValidator interface {
	ValidateLink(rawURL string) error
}

// Resolver はルートコードと外部リンクを遷移先に変換する。
type Resolver struct {
	links LinkValidator
}

// NewResolver はResolverを生成する。
func NewResolver(links LinkValidator) *Resolver {
	return &Resolver{links: links}
}

// Resolve はルートコードを遷移先に変換する。
// コードは大文字小文字と前後の空白を無視する。未知のコードはHomeにフォールバックする。
func Resolve(code string) Target {
	key := strings.ToLower(strings.TrimSpace(code))
	e, ok := codes[key]
	if !ok {
		return Target{Code: code, Path: Home, Fallback: true}
	}
	return Target{Code: key, Path: e.path, RequiresAuth: e.requiresAuth}
}

// Known はコードが変換表に存在するかを返す。
func Known(code string) bool {
	_, ok := codes[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// ResolveLink はバナーやポップアップのルートコードとリンクから遷移先を決める。
// ルートコードが優先され、コードが空でリンクが安全な場合のみ外部リンクとして扱う。
// どちらも使えない場合はHomeにフォールバックする。
func (r *Resolver) ResolveLink(code, link string) Target {
	if strings.TrimSpace(code) != "" {
		return Resolve(code)
	}
	if link != "" && r.links.ValidateLink(link) == nil {
		return Target{URL: link, External: true}
	}
	return Target{Path: Home, Fallback: true}
}
