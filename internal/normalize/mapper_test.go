package normalize

import "testing"

func TestMapperResolve_AliasTable(t *testing.T) {
	m := NewMapper(Config{})

	cases := []struct {
		raw  string
		want string
	}{
		{"Bow Valley 1", "Bow Valley"},
		{"U13 Mustangs Gold", "McKnight"},
		{"NWCAA Stampeders", "North West"},
		{"Bruins 4 White", "Bow River"},
		{"springbank rockies", "Springbank"},
		{"U15 Knights 2", "Knights"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := m.Resolve(tc.raw)
			if !ok {
				t.Fatalf("expected %q to resolve", tc.raw)
			}
			if got != tc.want {
				t.Fatalf("resolve %q: want %q, got %q", tc.raw, tc.want, got)
			}
		})
	}
}

func TestMapperResolve_RejectsDisallowedAssociations(t *testing.T) {
	m := NewMapper(Config{})

	// These names match alias rules whose association is outside the
	// member set. They must be rejected, not degraded into a suffix guess.
	for _, raw := range []string{
		"Crowfoot 3",
		"GHC Ice",
		"Simons Valley 2 Blue",
		"CBHA Rangers",
		"Blackfoot Chiefs",
	} {
		t.Run(raw, func(t *testing.T) {
			if got, ok := m.Resolve(raw); ok {
				t.Fatalf("expected %q to be rejected, resolved to %q", raw, got)
			}
		})
	}
}

func TestMapperResolve_OverridesBeatAliases(t *testing.T) {
	m := NewMapper(Config{
		Overrides: map[string]string{
			"Bruins Select": "Springbank",
			"Mystery Squad": "Crowfoot",
		},
	})

	got, ok := m.Resolve("Bruins Select")
	if !ok || got != "Springbank" {
		t.Fatalf("override not applied: got %q ok=%t", got, ok)
	}

	// An override pointing outside the member set still rejects.
	if got, ok := m.Resolve("Mystery Squad"); ok {
		t.Fatalf("expected disallowed override to reject, got %q", got)
	}

	// Overrides are exact-match: the alias table still handles the rest.
	got, ok = m.Resolve("Bruins 2")
	if !ok || got != "Bow River" {
		t.Fatalf("alias fallthrough broken: got %q ok=%t", got, ok)
	}
}

func TestMapperResolve_StripsDecorations(t *testing.T) {
	// An empty alias table forces the suffix heuristic.
	m := NewMapper(Config{Aliases: []AliasRule{}})

	cases := []struct {
		raw  string
		want string
	}{
		{"U13 Springbank 2 Blue 1", "Springbank"},
		{"u13 Springbank 2", "Springbank"},
		{"Glenlake 6", "Glenlake"},
		{"U11 Bow Valley White", "Bow Valley"},
		{"u11 bow valley", "Bow Valley"},
		{"Trails West Navy", "Trails West"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := m.Resolve(tc.raw)
			if !ok {
				t.Fatalf("expected %q to resolve", tc.raw)
			}
			if got != tc.want {
				t.Fatalf("resolve %q: want %q, got %q", tc.raw, tc.want, got)
			}
		})
	}
}

func TestMapperResolve_EdgeInputs(t *testing.T) {
	m := NewMapper(Config{})

	if _, ok := m.Resolve(""); ok {
		t.Fatal("expected empty name to reject")
	}
	if _, ok := m.Resolve("   "); ok {
		t.Fatal("expected blank name to reject")
	}
	if _, ok := m.Resolve("Completely Unknown Team"); ok {
		t.Fatal("expected unknown name to reject")
	}

	got, ok := m.Resolve("glenlake")
	if !ok || got != "Glenlake" {
		t.Fatalf("expected canonical casing, got %q ok=%t", got, ok)
	}
}
