package security

import (
	"strings"
	"testing"
)

func TestContentSanitizer_HTML(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "段落と強調は残る",
			input:        "<p>Rates up <strong>5%</strong> today</p>",
			wantContains: []string{"<p>", "<strong>5%</strong>"},
		},
		{
			name:       "scriptは除去される",
			input:      `<p>Hi</p><script>alert(1)</script>`,
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "onclick属性は除去される",
			input:      `<p onclick="steal()">Hi</p>`,
			wantAbsent: []string{"onclick", "steal"},
		},
		{
			name:         "httpsリンクにはtarget=_blankが付く",
			input:        `<a href="https://example.com/promo">promo</a>`,
			wantContains: []string{`href="https://example.com/promo"`, `target="_blank"`, "noopener"},
		},
		{
			name:       "javascriptスキームのリンクは除去される",
			input:      `<a href="javascript:alert(1)">x</a>`,
			wantAbsent: []string{"javascript"},
		},
		{
			name:       "http画像は除去される",
			input:      `<img src="http://example.com/a.png">`,
			wantAbsent: []string{"http://example.com/a.png"},
		},
		{
			name:         "https画像は残る",
			input:        `<img src="https://cdn.example.com/a.png" alt="banner">`,
			wantContains: []string{`src="https://cdn.example.com/a.png"`, `alt="banner"`},
		},
		{
			name:       "iframeは除去される",
			input:      `<iframe src="https://evil.example"></iframe>`,
			wantAbsent: []string{"iframe", "evil"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.HTML(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("HTML(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("HTML(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

func TestContentSanitizer_Text(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Text(" <b>Holiday</b> bonus<script>x()</script> ")
	if got != "Holiday bonus" {
		t.Errorf("Text = %q, want %q", got, "Holiday bonus")
	}
}

func TestContentSanitizer_Idempotent(t *testing.T) {
	s := NewContentSanitizer()
	input := `<p>Hi <a href="https://example.com">there</a></p><img src="https://x.example/a.png">`

	once := s.HTML(input)
	if twice := s.HTML(once); twice != once {
		t.Errorf("2回目のサニタイズで結果が変わった:\n%q\n%q", once, twice)
	}
}
