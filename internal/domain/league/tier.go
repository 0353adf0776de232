package league

import (
	"regexp"
	"strconv"
)

// TierInfo is the competitive tier encoded in a division display name,
// e.g. "U13 Tier 2 NBC" or "U15 AA".
type TierInfo struct {
	Tier            int
	NonBodyChecking bool
	Elite           bool
}

var (
	tierNumberRe = regexp.MustCompile(`(?i)\bTIER\s*(\d+)`)
	nbcRe        = regexp.MustCompile(`(?i)\bNBC\b`)
	eliteRe      = regexp.MustCompile(`(?i)\b(AA|HADP)\b`)
)

// ParseTier extracts tier information from a league or division name.
// The second return is false when the name carries no tier marker at all.
func ParseTier(name string) (TierInfo, bool) {
	info := TierInfo{
		NonBodyChecking: nbcRe.MatchString(name),
		Elite:           eliteRe.MatchString(name),
	}

	if m := tierNumberRe.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			info.Tier = n
		}
	}

	if info.Tier == 0 && !info.NonBodyChecking && !info.Elite {
		return TierInfo{}, false
	}

	return info, true
}
