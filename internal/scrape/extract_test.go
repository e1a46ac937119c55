package scrape

import "testing"

func TestExtractPhones(t *testing.T) {
	text := `Contact us: +977-1-5362828, Citizenship Section: 01-5367691.
	For urgent queries call 5362828 again.`

	phones := ExtractPhones(text)
	if len(phones) != 2 {
		t.Fatalf("expected 2 unique phones, got %v", phones)
	}
	if phones[0] != "015362828" || phones[1] != "015367691" {
		t.Fatalf("unexpected phones: %v", phones)
	}
}

func TestExtractPhonesDevanagari(t *testing.T) {
	phones := ExtractPhones("फोन: ०१-५३६२८२८")
	if len(phones) != 1 || phones[0] != "015362828" {
		t.Fatalf("expected [015362828], got %v", phones)
	}
}

func TestExtractPhonesNone(t *testing.T) {
	if phones := ExtractPhones("no numbers here"); len(phones) != 0 {
		t.Fatalf("expected no phones, got %v", phones)
	}
}

func TestExtractEmailsPrefersGovDomains(t *testing.T) {
	text := "Write to info@daokathmandu.moha.gov.np or webmaster@gmail.com"
	emails := ExtractEmails(text)
	if len(emails) != 1 || emails[0] != "info@daokathmandu.moha.gov.np" {
		t.Fatalf("expected only the gov.np address, got %v", emails)
	}
}

func TestExtractEmailsFallsBackToGeneric(t *testing.T) {
	emails := ExtractEmails("Reach us at Support@Example.com")
	if len(emails) != 1 || emails[0] != "support@example.com" {
		t.Fatalf("expected lowercased generic address, got %v", emails)
	}
}

func TestHasStandardHours(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Open 10:00 AM to 5:00 PM Sunday to Friday", true},
		{"Open 10:00 AM only", false},
		{"Closes at 5:00 PM", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasStandardHours(tt.text); got != tt.expected {
			t.Errorf("HasStandardHours(%q) = %v, expected %v", tt.text, got, tt.expected)
		}
	}
}
