package normalize

// AliasRule maps a marker substring, matched against the upper-cased team
// name, to an association name. Rules are checked in order and the first
// hit wins, so broader markers must come after narrower ones.
type AliasRule struct {
	Token     string
	Community string
}

// DefaultAllowlist is the closed set of member communities tracked by the
// dashboard. Alias hits resolving outside this list are rejected rather
// than persisted.
func DefaultAllowlist() []string {
	return []string{
		"Bow River",
		"North West",
		"Trails West",
		"Springbank",
		"Raiders",
		"McKnight",
		"Glenlake",
		"Bow Valley",
		"Wolverines",
		"Knights",
		"Southwest",
	}
}

// DefaultAliases is the built-in marker table. It intentionally includes
// associations outside the allowlist: recognizing "CROWFOOT" and rejecting
// it is different from not recognizing it at all, which would let the
// suffix heuristic mangle the name.
func DefaultAliases() []AliasRule {
	return []AliasRule{
		{Token: "GHC", Community: "Girls Hockey Calgary"},
		{Token: "GIRLS HOCKEY CALGARY", Community: "Girls Hockey Calgary"},
		{Token: "CBHA", Community: "CBHA"},
		{Token: "GLENLAKE", Community: "Glenlake"},
		{Token: "BOW VALLEY", Community: "Bow Valley"},
		{Token: "BOW RIVER", Community: "Bow River"},
		{Token: "BRUINS", Community: "Bow River"},
		{Token: "SPRINGBANK", Community: "Springbank"},
		{Token: "CROWFOOT", Community: "Crowfoot"},
		{Token: "TRAILS WEST", Community: "Trails West"},
		{Token: "SIMONS VALLEY", Community: "Simons Valley"},
		{Token: "SOUTH WEST", Community: "Southwest"},
		{Token: "SOUTHWEST", Community: "Southwest"},
		{Token: "BLACKFOOT", Community: "Blackfoot"},
		{Token: "MCKNIGHT", Community: "McKnight"},
		{Token: "MUSTANGS", Community: "McKnight"},
		{Token: "MIDNAPORE", Community: "Midnapore"},
		{Token: "MAVERICKS", Community: "Midnapore"},
		{Token: "LAKE BONAVISTA", Community: "Lake Bonavista"},
		{Token: "NORTH WEST", Community: "North West"},
		{Token: "NORTHWEST", Community: "North West"},
		{Token: "NWCAA", Community: "North West"},
		{Token: "WARRIORS", Community: "North West"},
		{Token: "CALGARY NORTHSTARS", Community: "Calgary Northstars"},
		{Token: "CNHA", Community: "Calgary Northstars"},
		{Token: "CALGARY ROYALS", Community: "Calgary Royals"},
		{Token: "CRAA", Community: "Calgary Royals"},
		{Token: "KNIGHTS", Community: "Knights"},
		{Token: "WOLVERINES", Community: "Wolverines"},
		{Token: "RAIDERS", Community: "Raiders"},
	}
}

// DefaultColors is the jersey-color vocabulary stripped from team-name
// suffixes by the fallback heuristic.
func DefaultColors() []string {
	return []string{
		"Red", "Blue", "White", "Black", "Gold", "Silver", "Green",
		"Yellow", "Grey", "Gray", "Orange", "Teal", "Navy", "Maroon",
		"Purple", "Pink", "Lime", "Cyan", "Magenta", "Brown", "Beige",
		"Royal", "Sky",
	}
}
