package appinfo

import (
	"strconv"
	"strings"

	"github.com/hitoshi/giftdesk/internal/model"
)

// UpdateStatus はアップデート判定の結果。
type UpdateStatus struct {
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion"`
	// Required は現在のバージョンが最低バージョン未満であることを示す。
	Required bool `json:"required"`
	// Available は新しいバージョンがあることを示す。Requiredなら常にtrue。
	Available bool   `json:"available"`
	UpdateURL string `json:"updateUrl,omitempty"`
	Note      string `json:"note,omitempty"`
}

// CheckUpdate は現在のバージョンとアプリ設定を比較する。
// 設定側のバージョンが空の場合はその判定を行わない。
func CheckUpdate(current string, cfg model.AppConfig) UpdateStatus {
	st := UpdateStatus{
		CurrentVersion: current,
		LatestVersion:  cfg.LatestVersion,
		UpdateURL:      cfg.UpdateURL,
		Note:           cfg.UpdateNote,
	}
	if cfg.MinVersion != "" && CompareVersions(current, cfg.MinVersion) < 0 {
		st.Required = true
		st.Available = true
		return st
	}
	if cfg.LatestVersion != "" && CompareVersions(current, cfg.LatestVersion) < 0 {
		st.Available = true
	}
	return st
}

// CompareVersions はドット区切りのバージョンを比較し、a<bなら-1、a==bなら0、a>bなら1を返す。
// 先頭のvと"-"以降のサフィックスは無視する。足りない要素は0とみなすので1.2と1.2.0は等しい。
// 数値でない要素は0として扱う。
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+ "); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return nil
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}
