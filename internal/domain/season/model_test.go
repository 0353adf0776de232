package season

import "testing"

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2021/2022", "2021-2022"},
		{"2025-2026", "2025-2026"},
		{"  2024/2025  ", "2024-2025"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CanonicalName(tc.in); got != tc.want {
			t.Fatalf("CanonicalName(%q): want %q, got %q", tc.in, tc.want, got)
		}
	}
}
