package tags

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, []string{}},
		{"empty input", []string{}, []string{}},
		{"lowercases and trims", []string{"  Network  ", "VPN"}, []string{"network", "vpn"}},
		{"dedupes preserving first", []string{"a", "B", "a", "b"}, []string{"a", "b"}},
		{"drops invalid characters", []string{"ok-tag", "bad!tag", "c#"}, []string{"ok-tag"}},
		{"drops empty entries", []string{"", "  ", "x"}, []string{"x"}},
		{"allows spaces and hyphens", []string{"remote work", "how-to"}, []string{"remote work", "how-to"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_LengthLimit(t *testing.T) {
	long := strings.Repeat("a", MaxTagLen+1)
	exact := strings.Repeat("a", MaxTagLen)

	got := Normalize([]string{long, exact})
	if len(got) != 1 || got[0] != exact {
		t.Errorf("Normalize() = %v, want only the %d-char tag", got, MaxTagLen)
	}
}

func TestNormalize_OutputCharset(t *testing.T) {
	got := Normalize([]string{"VPN Setup", "E-Mail", "2024"})
	for _, tag := range got {
		if tag != strings.ToLower(tag) {
			t.Errorf("tag %q is not lowercase", tag)
		}
		if !validTag.MatchString(tag) {
			t.Errorf("tag %q does not match the allowed charset", tag)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"json array", `["alpha","Beta"]`, []string{"alpha", "Beta"}},
		{"comma separated", "alpha, beta,gamma", []string{"alpha", " beta", "gamma"}},
		{"malformed json falls back", `["alpha",`, []string{`["alpha"`, ``}},
		{"single value", "alpha", []string{"alpha"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeString(t *testing.T) {
	got := NormalizeString(`["Network", "network", "VPN!"]`)
	want := []string{"network"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeString() = %v, want %v", got, want)
	}

	got = NormalizeString("Alpha, beta , ALPHA")
	want = []string{"alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeString() = %v, want %v", got, want)
	}
}
