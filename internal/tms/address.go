package tms

import "strings"

// ParsedAddress is the best-effort interpretation of NetSuite's free-form
// multi-line shipAddress blob.
type ParsedAddress struct {
	Name       string
	Company    string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ParseShipAddress splits a shipping address blob into its components.
// Five or more lines read as name / company / street / "city state zip" /
// country; three or four lines omit the company. Anything else is
// unrecognized and the caller falls back to operator-supplied fields.
func ParseShipAddress(blob string) (ParsedAddress, bool) {
	var lines []string
	for _, line := range strings.Split(blob, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var addr ParsedAddress
	switch {
	case len(lines) >= 5:
		addr.Name = lines[0]
		addr.Company = lines[1]
		addr.Street = lines[2]
		addr.City, addr.State, addr.PostalCode = splitCityLine(lines[3])
		addr.Country = normalizeCountry(lines[4])
	case len(lines) == 4:
		addr.Name = lines[0]
		addr.Street = lines[1]
		addr.City, addr.State, addr.PostalCode = splitCityLine(lines[2])
		addr.Country = normalizeCountry(lines[3])
	case len(lines) == 3:
		addr.Name = lines[0]
		addr.Street = lines[1]
		addr.City, addr.State, addr.PostalCode = splitCityLine(lines[2])
		addr.Country = "US"
	default:
		return ParsedAddress{}, false
	}

	if addr.City == "" || addr.State == "" || addr.PostalCode == "" {
		return ParsedAddress{}, false
	}
	return addr, true
}

// splitCityLine takes "<city…> <state> <postal>" apart; the city may span
// multiple words.
func splitCityLine(line string) (city, state, postal string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", ""
	}
	postal = fields[len(fields)-1]
	state = fields[len(fields)-2]
	city = strings.Join(fields[:len(fields)-2], " ")
	return city, state, postal
}

func normalizeCountry(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "united states", "united states of america", "usa", "us":
		return "US"
	}
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 2 {
		return strings.ToUpper(trimmed)
	}
	return trimmed
}
