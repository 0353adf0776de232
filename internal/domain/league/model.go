package league

import "fmt"

// Type is the competition phase a standings table belongs to.
type Type string

const (
	TypeRegular    Type = "Regular"
	TypeSeeding    Type = "Seeding"
	TypePlayoff    Type = "Playoff"
	TypeTournament Type = "Tournament"
)

// League is one division standings table on one source. Identity is the
// (slug, stream, type) triple: the same division carried by two sources, or
// in two phases, is two leagues.
type League struct {
	ID     int64
	Name   string
	Slug   string
	Stream string
	Type   Type
}

func (l League) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Slug == "" {
		return fmt.Errorf("league slug is required")
	}
	if l.Stream == "" {
		return fmt.Errorf("league stream is required")
	}
	switch l.Type {
	case TypeRegular, TypeSeeding, TypePlayoff, TypeTournament:
	default:
		return fmt.Errorf("league type %q is not recognized", l.Type)
	}

	return nil
}
