package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "script removed",
			input:    `<p>hello</p><script>alert(1)</script>`,
			contains: []string{"<p>hello</p>"},
			excludes: []string{"<script>", "alert"},
		},
		{
			name:     "formatting preserved",
			input:    `<p><strong>bold</strong> and <em>italic</em></p>`,
			contains: []string{"<strong>bold</strong>", "<em>italic</em>"},
		},
		{
			name:     "tables preserved",
			input:    `<table><tr><td colspan="2">cell</td></tr></table>`,
			contains: []string{"<table>", `colspan="2"`},
		},
		{
			name:     "event handlers removed",
			input:    `<p onclick="alert(1)">click</p>`,
			contains: []string{"<p>click</p>"},
			excludes: []string{"onclick"},
		},
		{
			name:     "javascript href removed",
			input:    `<a href="javascript:alert(1)">x</a>`,
			excludes: []string{"javascript:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, want it to contain %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("Sanitize(%q) = %q, want %q removed", tt.input, got, bad)
				}
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"just some text", true},
		{"", true},
		{"<p>html</p>", false},
		{"a < b and c > d", false},
		{"a < b only", true},
	}
	for _, tt := range tests {
		if got := IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	got := PlainTextToHTML("line one\nline <two>")
	want := "<p>line one<br>line &lt;two&gt;</p>"
	if got != want {
		t.Errorf("PlainTextToHTML() = %q, want %q", got, want)
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<p>How to <strong>reset</strong> a password</p>")
	if got != "How to reset a password" {
		t.Errorf("StripTags() = %q, want %q", got, "How to reset a password")
	}
}
