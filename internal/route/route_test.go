package route

import (
	"testing"

	"github.com/hitoshi/giftdesk/internal/security"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		code         string
		wantPath     string
		wantAuth     bool
		wantFallback bool
	}{
		{"lottery", "/lottery", true, false},
		{" Wallet ", "/wallet", true, false},
		{"rates", "/rates", false, false},
		{"home", Home, false, false},
		{"unknown_screen", Home, false, true},
		{"", Home, false, true},
	}
	for _, tt := range tests {
		got := Resolve(tt.code)
		if got.Path != tt.wantPath || got.RequiresAuth != tt.wantAuth || got.Fallback != tt.wantFallback {
			t.Errorf("Resolve(%q) = %+v", tt.code, got)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("VIP") {
		t.Error("Known(VIP) = false")
	}
	if Known("casino") {
		t.Error("Known(casino) = true")
	}
}

func TestResolver_ResolveLink(t *testing.T) {
	r := NewResolver(security.NewLinkGuard())

	tests := []struct {
		name         string
		code, link   string
		wantExternal bool
		wantPath     string
	}{
		{"コード優先", "invite", "https://example.com", false, "/invite"},
		{"安全な外部リンク", "", "https://example.com/promo", true, ""},
		{"危険なリンクはHome", "", "http://127.0.0.1/admin", false, Home},
		{"両方空はHome", "", "", false, Home},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveLink(tt.code, tt.link)
			if got.External != tt.wantExternal || got.Path != tt.wantPath {
				t.Errorf("ResolveLink(%q, %q) = %+v", tt.code, tt.link, got)
			}
		})
	}
}
