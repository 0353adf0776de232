package league

import "testing"

func TestParseTier(t *testing.T) {
	cases := []struct {
		name string
		want TierInfo
		ok   bool
	}{
		{"U13 Tier 2 NBC", TierInfo{Tier: 2, NonBodyChecking: true}, true},
		{"U15 Tier 1", TierInfo{Tier: 1}, true},
		{"U18 AA", TierInfo{Elite: true}, true},
		{"U16 HADP", TierInfo{Elite: true}, true},
		{"u13 tier 4", TierInfo{Tier: 4}, true},
		{"U11 North Division", TierInfo{}, false},
		{"", TierInfo{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTier(tc.name)
			if ok != tc.ok {
				t.Fatalf("ParseTier(%q): want ok=%t, got %t", tc.name, tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("ParseTier(%q): want %+v, got %+v", tc.name, tc.want, got)
			}
		})
	}
}

func TestLeagueValidate(t *testing.T) {
	valid := League{Name: "U13 Tier 2", Slug: "u13-tier-2", Stream: "ramp", Type: TypeRegular}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid league, got %v", err)
	}

	for name, mutate := range map[string]func(*League){
		"missing name":   func(l *League) { l.Name = "" },
		"missing slug":   func(l *League) { l.Slug = "" },
		"missing stream": func(l *League) { l.Stream = "" },
		"bad type":       func(l *League) { l.Type = "Exhibition" },
	} {
		t.Run(name, func(t *testing.T) {
			l := valid
			mutate(&l)
			if err := l.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
