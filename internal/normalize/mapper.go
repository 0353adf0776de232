package normalize

import (
	"regexp"
	"strings"
)

// Mapper resolves raw team display names to community names. Resolution is
// deterministic and side-effect free; a false return means the name should
// be skipped entirely, never persisted.
type Mapper struct {
	overrides map[string]string
	aliases   []AliasRule
	allow     map[string]string
	colors    []string
}

// Config customizes a Mapper. Zero-value fields fall back to the built-in
// rule tables.
type Config struct {
	Overrides map[string]string
	Aliases   []AliasRule
	Allowlist []string
	Colors    []string
}

func NewMapper(cfg Config) *Mapper {
	aliases := cfg.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	allowlist := cfg.Allowlist
	if allowlist == nil {
		allowlist = DefaultAllowlist()
	}
	colors := cfg.Colors
	if colors == nil {
		colors = DefaultColors()
	}

	allow := make(map[string]string, len(allowlist))
	for _, name := range allowlist {
		allow[strings.ToUpper(name)] = name
	}

	overrides := make(map[string]string, len(cfg.Overrides))
	for k, v := range cfg.Overrides {
		overrides[k] = v
	}

	return &Mapper{
		overrides: overrides,
		aliases:   append([]AliasRule(nil), aliases...),
		allow:     allow,
		colors:    colors,
	}
}

var (
	agePrefixRe      = regexp.MustCompile(`(?i)^U\d+\s+`)
	trailingNumberRe = regexp.MustCompile(`\s+\d+$`)
)

// Resolve maps a raw team name to its community. The boolean reports
// whether the name resolved to an allowed community; callers must not
// persist anything when it is false.
//
// Order matters: exact overrides beat the alias table, and the alias table
// beats the suffix-stripping heuristic. A name that matches an alias whose
// community is outside the allowlist is rejected outright instead of
// falling through, so "Crowfoot 3" never degrades into a heuristic guess.
func (m *Mapper) Resolve(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}

	if mapped, ok := m.overrides[name]; ok {
		return m.allowed(mapped)
	}

	upper := strings.ToUpper(name)
	for _, rule := range m.aliases {
		if strings.Contains(upper, rule.Token) {
			return m.allowed(rule.Community)
		}
	}

	return m.allowed(m.stripDecorations(name))
}

func (m *Mapper) allowed(candidate string) (string, bool) {
	canonical, ok := m.allow[strings.ToUpper(strings.TrimSpace(candidate))]
	if !ok {
		return "", false
	}
	return canonical, true
}

// stripDecorations peels roster decorations off a name that matched no
// alias: a leading age-group prefix, a trailing squad number, a trailing
// jersey color, then a trailing number again ("U13 Springbank 2 Blue 1").
func (m *Mapper) stripDecorations(name string) string {
	out := agePrefixRe.ReplaceAllString(name, "")
	out = trailingNumberRe.ReplaceAllString(out, "")
	for _, color := range m.colors {
		suffix := " " + strings.ToUpper(color)
		if strings.HasSuffix(strings.ToUpper(out), suffix) {
			out = strings.TrimSpace(out[:len(out)-len(suffix)])
			break
		}
	}
	out = trailingNumberRe.ReplaceAllString(out, "")

	return strings.TrimSpace(out)
}
