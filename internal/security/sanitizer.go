// Package security はバックエンド配信コンテンツのサニタイズと
// 外部リンク・外向き通信の安全性検証を提供する。
package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はバックエンドが配信するHTMLを表示用にサニタイズする。
type Sanitizer interface {
	// HTML はお知らせポップアップ本文のHTMLをサニタイズする。
	HTML(raw string) string
	// Text は全てのタグを除去してプレーンテキストにする。
	Text(raw string) string
}

// ContentSanitizer はbluemondayの許可リストポリシーによるSanitizer実装。
// 並行に使用してよい。
type ContentSanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerを生成する。
//
// ポップアップ本文で許可するもの:
//   - p, br, ul, ol, li, strong, em, b, i, span, h3, h4
//   - aのhref（httpsのみ、target="_blank"とrel="noopener noreferrer"を付与）
//   - imgのsrc（httpsのみ）とalt
func NewContentSanitizer() *ContentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "b", "i", "span", "h3", "h4")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &ContentSanitizer{
		rich:  p,
		plain: bluemonday.StrictPolicy(),
	}
}

// HTML はお知らせポップアップ本文のHTMLをサニタイズする。
func (s *ContentSanitizer) HTML(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// Text は全てのタグを除去してプレーンテキストにする。
// タイトルなどHTMLを許可しない項目に使う。
func (s *ContentSanitizer) Text(raw string) string {
	return strings.TrimSpace(s.plain.Sanitize(raw))
}

var _ Sanitizer = (*ContentSanitizer)(nil)
