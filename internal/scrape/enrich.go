package scrape

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

const enhancedDataQuality = "factory_generated_enhanced_with_live"

// serviceStubs maps page keywords to the minimal service appended when an
// office's site mentions a service the record does not list yet.
var serviceStubs = []struct {
	keyword string
	stub    models.Service
}{
	{"citizenship", models.Service{
		ServiceID:         "citizenship_certificate",
		ServiceName:       "Citizenship Certificate",
		ServiceNameNepali: "नागरिकता प्रमाणपत्र",
	}},
	{"passport", models.Service{
		ServiceID:         "passport_app",
		ServiceName:       "E-Passport Application",
		ServiceNameNepali: "राहदानी आवेदन",
	}},
	{"driving license", models.Service{
		ServiceID:         "driving_license",
		ServiceName:       "Driving License",
		ServiceNameNepali: "सवारी चालक अनुमतिपत्र",
	}},
}

// Enricher folds fetched page text into existing office records without
// clobbering anything already known.
type Enricher struct {
	now func() time.Time
}

func NewEnricher() *Enricher {
	return &Enricher{now: time.Now}
}

// TextFromHTML extracts the visible text of an HTML document.
func TextFromHTML(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}

// EnrichFromText merges phones, an email, operating hours, and service
// mentions extracted from text into the office. Existing fields are never
// overwritten; a second pass over the same text changes nothing. Returns
// whether anything new was recorded.
func (e *Enricher) EnrichFromText(office *models.Office, text string) bool {
	if text == "" {
		return false
	}
	if office.Contact == nil {
		office.Contact = &models.Contact{}
	}

	enhanced := false

	existing := make(map[string]bool)
	for _, p := range office.Contact.Phones() {
		existing[p] = true
	}
	applied := 0
	for _, p := range ExtractPhones(text) {
		if existing[p] || applied == 2 {
			continue
		}
		switch {
		case office.Contact.PhoneGeneral == "":
			office.Contact.PhoneGeneral = p
			applied++
			enhanced = true
		case office.Contact.PhoneCitizenship == "":
			office.Contact.PhoneCitizenship = p
			applied++
			enhanced = true
		}
	}

	if emails := ExtractEmails(text); len(emails) > 0 && office.Contact.Email == "" {
		office.Contact.Email = emails[0]
		enhanced = true
	}

	if office.OperatingHours == nil && HasStandardHours(text) {
		office.OperatingHours = StandardOperatingHours()
		enhanced = true
	}

	lower := strings.ToLower(text)
	for _, s := range serviceStubs {
		if strings.Contains(lower, s.keyword) && !office.HasService(s.stub.ServiceID) {
			office.Services = append(office.Services, s.stub)
			enhanced = true
		}
	}

	if enhanced && office.Metadata != nil {
		office.Metadata.DataQuality = enhancedDataQuality
		office.Metadata.LastScraped = e.now().Format(time.RFC3339)
	}
	office.UpdateCompleteness()
	return enhanced
}
