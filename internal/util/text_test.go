package util

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello world", "Hello world"},
		{"control chars stripped", "He\x00llo\x08 wor\x1fld", "Hello world"},
		{"space runs collapsed", "too   many\t\tspaces", "too many spaces"},
		{"blank lines capped", "a\n\n\n\n\nb", "a\n\nb"},
		{"per-line trim", "  left\nright  \n  both  ", "left\nright\nboth"},
		{"crlf normalized", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"outer whitespace trimmed", "\n\n  text  \n\n", "text"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.in); got != tt.want {
				t.Fatalf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
