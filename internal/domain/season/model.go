package season

import "strings"

// Season is a single registration year, e.g. "2024-2025".
type Season struct {
	ID   int64
	Name string
}

// CanonicalName rewrites the site's "2021/2022" spelling to the stored
// "2021-2022" form. Already-canonical names pass through unchanged.
func CanonicalName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "/", "-")
}
