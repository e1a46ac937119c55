package scrape

import (
	"regexp"
	"strings"
)

// Phone patterns seen on Nepali government sites, in priority order: the
// international form, the local landline form, the dashed short form, and the
// Devanagari-numeral form.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?977[-\s]?1[-\s]?\d{7}`),
	regexp.MustCompile(`0?1[-\s]?\d{7}`),
	regexp.MustCompile(`\d{2}-\d{7}`),
	regexp.MustCompile(`०[०-९][-\s]?[०-९]{7}`),
}

var (
	govEmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.(?:gov\.np|org\.np|com\.np|np)\b`)
	anyEmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

var devanagariDigits = strings.NewReplacer(
	"०", "0", "१", "1", "२", "2", "३", "3", "४", "4",
	"५", "5", "६", "6", "७", "7", "८", "8", "९", "9",
)

// ExtractPhones pulls phone numbers out of free text, normalized and
// deduplicated, in order of first appearance. Devanagari numerals are
// transliterated before normalization.
func ExtractPhones(text string) []string {
	seen := make(map[string]bool)
	var phones []string
	for _, pat := range phonePatterns {
		for _, m := range pat.FindAllString(text, -1) {
			p := NormalizePhone(devanagariDigits.Replace(m))
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			phones = append(phones, p)
		}
	}
	return phones
}

// ExtractEmails pulls email addresses out of free text, preferring Nepali
// government and organization domains. The generic pattern is only consulted
// when no .np address is present.
func ExtractEmails(text string) []string {
	matches := govEmailPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		matches = anyEmailPattern.FindAllString(text, -1)
	}
	seen := make(map[string]bool)
	var emails []string
	for _, m := range matches {
		m = strings.ToLower(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		emails = append(emails, m)
	}
	return emails
}

// HasStandardHours reports whether page text mentions the standard
// government office schedule. Both the opening and closing time must appear.
func HasStandardHours(text string) bool {
	return strings.Contains(text, "10:00 AM") && strings.Contains(text, "5:00 PM")
}
