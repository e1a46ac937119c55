package scrape

import (
	"regexp"
	"strings"
)

var (
	phoneSeparators = regexp.MustCompile(`[-\s()]`)
	nonAlnumRun     = regexp.MustCompile(`[^a-z0-9]+`)
	multiUnderscore = regexp.MustCompile(`_+`)
)

// NormalizePhone canonicalizes a Nepali phone number to local form:
// separators removed, the +977 country code stripped, and bare 7-digit
// Kathmandu landlines prefixed with the 01 area code. Distinct spellings of
// the same number normalize to the same string.
func NormalizePhone(raw string) string {
	p := phoneSeparators.ReplaceAllString(raw, "")
	if strings.HasPrefix(p, "+977") {
		p = p[4:]
	} else if strings.HasPrefix(p, "977") {
		p = p[3:]
	}
	if !strings.HasPrefix(p, "0") {
		switch {
		case len(p) == 7:
			p = "01" + p
		case len(p) == 8 && strings.HasPrefix(p, "1"):
			// Country-code form drops the trunk zero: 977-1-XXXXXXX.
			p = "0" + p
		}
	}
	return p
}

// officeAbbreviations are applied longest-first so the comma forms win over
// their bare counterparts.
var officeAbbreviations = []struct{ from, to string }{
	{"district administration office,", "dao"},
	{"district administration office", "dao"},
	{"transport management office,", "tmo"},
	{"land revenue office,", "lro"},
	{"department of", "dept"},
	{"office of", ""},
}

// DeriveOfficeID turns an office name into a stable slug identifier, e.g.
// "District Administration Office, Kathmandu" becomes "dao_kathmandu".
// Distinct names can collide; callers that need uniqueness must check.
func DeriveOfficeID(name string) string {
	id := strings.ToLower(name)
	for _, a := range officeAbbreviations {
		id = strings.ReplaceAll(id, a.from, a.to)
	}
	id = nonAlnumRun.ReplaceAllString(id, "_")
	id = multiUnderscore.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}

// sectionMatchesService reports whether a staff section string belongs to a
// service keyword. The keyword matches as a whole or by any of its
// underscore-separated tokens.
func sectionMatchesService(section, keyword string) bool {
	s := strings.ToLower(section)
	if strings.Contains(s, keyword) {
		return true
	}
	for _, tok := range strings.Split(keyword, "_") {
		if tok != "" && strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
