package team

import "fmt"

// Team identity is the raw display name alone. The same club name appearing
// in two leagues resolves to one row, which matches how the sources publish
// rosters today.
type Team struct {
	ID          int64
	Name        string
	CommunityID int64
}

func (t Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.CommunityID <= 0 {
		return fmt.Errorf("team community id is required")
	}

	return nil
}
