// Package model はドメインモデルを定義する。
package model

// Country は登録・電話番号入力で使う国の情報。
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	DialCode string `json:"dialCode"`
	Flag     string `json:"flag"`
	Currency string `json:"currency"`
}

// Banner はホーム画面のバナー。
// RouteCode が空でLinkが設定されている場合は外部リンクとして扱う。
type Banner struct {
	ID        string `json:"id"`
	Image     string `json:"image"`
	RouteCode string `json:"routeCode"`
	Link      string `json:"link"`
}

// Popup は起動時に表示するお知らせポップアップ。
// Content はバックエンドが返すHTML。表示前にサニタイズする。
type Popup struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	RouteCode string `json:"routeCode"`
}

// AppConfig はバックエンドから配信されるアプリ設定。
type AppConfig struct {
	LatestVersion      string   `json:"latestVersion"`
	MinVersion         string   `json:"minVersion"`
	UpdateURL          string   `json:"updateUrl"`
	UpdateNote         string   `json:"updateNote"`
	CustomerServiceURL string   `json:"customerServiceUrl"`
	Banners            []Banner `json:"banners"`
	Popup              *Popup   `json:"popup"`
}
