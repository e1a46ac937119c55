package scrape

import (
	"testing"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

func kathmanduTemplate() OfficeTemplate {
	return OfficeTemplate{
		Name:       "District Administration Office, Kathmandu",
		NameNepali: "जिल्ला प्रशासन कार्यालय, काठमाडौं",
		URL:        "https://daokathmandu.moha.gov.np",
		District:   "Kathmandu",
		Province:   "Bagmati Province",
		Address:    "Babarmahal, Kathmandu",
		Phones:     []string{"01-5362828", "01-5367691"},
		Services:   []string{"citizenship"},
		Staff: []StaffTemplate{
			{Name: "Rabin Kumar Rai", Position: "Administrative Officer", Section: "Citizenship Section"},
		},
	}
}

func testBuilder(t *testing.T) (*Builder, *Registry) {
	t.Helper()
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	return NewBuilder(reg), reg
}

func TestBuildOfficeCitizenshipService(t *testing.T) {
	b, _ := testBuilder(t)

	office, err := b.BuildOffice(kathmanduTemplate())
	if err != nil {
		t.Fatalf("BuildOffice: %v", err)
	}

	if office.ID != "dao_kathmandu" {
		t.Errorf("expected id dao_kathmandu, got %s", office.ID)
	}
	if office.Type != models.TypeDAO {
		t.Errorf("expected default type %s, got %s", models.TypeDAO, office.Type)
	}
	if office.Contact.PhoneGeneral != "015362828" {
		t.Errorf("expected normalized general phone 015362828, got %s", office.Contact.PhoneGeneral)
	}
	if office.Contact.PhoneCitizenship != "015367691" {
		t.Errorf("expected normalized citizenship phone 015367691, got %s", office.Contact.PhoneCitizenship)
	}

	var citizenship *models.Service
	count := 0
	for i := range office.Services {
		if office.Services[i].ServiceID == "citizenship_certificate" {
			citizenship = &office.Services[i]
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one citizenship_certificate service, got %d", count)
	}
	if citizenship.Fees == nil || citizenship.Fees.NormalProcessing == nil {
		t.Fatal("expected normal processing fee")
	}
	if citizenship.Fees.NormalProcessing.Amount != 100.0 {
		t.Errorf("expected normal fee 100.0, got %.1f", citizenship.Fees.NormalProcessing.Amount)
	}
	if citizenship.Fees.UrgentProcessing == nil || citizenship.Fees.UrgentProcessing.Amount != 500.0 {
		t.Errorf("expected urgent fee 500.0, got %+v", citizenship.Fees.UrgentProcessing)
	}
	if citizenship.Fees.NormalProcessing.Currency != "NPR" {
		t.Errorf("expected NPR currency, got %s", citizenship.Fees.NormalProcessing.Currency)
	}
}

func TestBuildOfficeSectionStaff(t *testing.T) {
	b, _ := testBuilder(t)

	office, err := b.BuildOffice(kathmanduTemplate())
	if err != nil {
		t.Fatalf("BuildOffice: %v", err)
	}

	for _, svc := range office.Services {
		if svc.ServiceID != "citizenship_certificate" {
			continue
		}
		if len(svc.Sections) != 1 || svc.Sections[0].SectionName != "Citizenship Section" {
			t.Fatalf("unexpected sections: %+v", svc.Sections)
		}
		if len(svc.Sections[0].Staff) != 1 || svc.Sections[0].Staff[0].Name != "Rabin Kumar Rai" {
			t.Fatalf("expected citizenship staff attached, got %+v", svc.Sections[0].Staff)
		}
	}
}

func TestBuildOfficeDefaults(t *testing.T) {
	b, _ := testBuilder(t)

	tpl := kathmanduTemplate()
	tpl.Address = ""
	office, err := b.BuildOffice(tpl)
	if err != nil {
		t.Fatalf("BuildOffice: %v", err)
	}

	if office.Location.Address != "Address not specified" {
		t.Errorf("expected address placeholder, got %q", office.Location.Address)
	}
	if office.OperatingHours == nil || office.OperatingHours.MondayFriday != "10:00 AM - 5:00 PM" {
		t.Errorf("expected standard operating hours, got %+v", office.OperatingHours)
	}
	if office.Metadata.DataQuality != "comprehensive_factory_generated" {
		t.Errorf("unexpected data quality: %s", office.Metadata.DataQuality)
	}
	if office.Metadata.CompletenessScore == 0 {
		t.Error("expected completeness score to be set")
	}
}

func TestBuildOfficeWithoutURL(t *testing.T) {
	b, _ := testBuilder(t)

	tpl := OfficeTemplate{
		Name:     "District Administration Office, Kathmandu",
		District: "Kathmandu",
		Province: "Bagmati Province",
		Phones:   []string{"01-5362828", "01-5367691"},
		Services: []string{"citizenship"},
	}
	office, err := b.BuildOffice(tpl)
	if err != nil {
		t.Fatalf("BuildOffice: %v", err)
	}
	if office.Contact.Website != "https://moha.gov.np" {
		t.Errorf("expected ministry portal fallback, got %s", office.Contact.Website)
	}
	if office.Metadata.DataSource != "https://moha.gov.np" {
		t.Errorf("expected fallback data source, got %s", office.Metadata.DataSource)
	}
	if !office.HasService("citizenship_certificate") {
		t.Error("expected citizenship service on minimal template")
	}
}

func TestBuildOfficeRejectsMalformedURL(t *testing.T) {
	b, _ := testBuilder(t)

	tpl := kathmanduTemplate()
	tpl.URL = "not a url"
	if _, err := b.BuildOffice(tpl); err == nil {
		t.Error("expected validation error for malformed url")
	}
}

func TestBuildSkipsInvalidTemplate(t *testing.T) {
	b, _ := testBuilder(t)

	valid := kathmanduTemplate()
	broken := kathmanduTemplate()
	broken.District = ""

	offices := b.Build([]OfficeTemplate{valid, broken})
	if len(offices) != 1 {
		t.Fatalf("expected 1 office from 2 templates, got %d", len(offices))
	}
	if offices[0].ID != "dao_kathmandu" {
		t.Errorf("unexpected surviving office: %s", offices[0].ID)
	}
}

func TestBuildFeesSpecialCases(t *testing.T) {
	_, reg := testBuilder(t)

	tests := []struct {
		id       string
		expected float64
	}{
		{"driving_license", 1500},
		{"vehicle_registration", 15000},
		{"business_license", 2000},
		{"company_registration", 5000},
	}

	for _, tt := range tests {
		def, ok := reg.Services[tt.id]
		if !ok {
			t.Fatalf("service %s missing from catalog", tt.id)
		}
		fees := buildFees(tt.id, def)
		if fees.NormalProcessing == nil || fees.NormalProcessing.Amount != tt.expected {
			t.Errorf("%s: expected normal fee %.0f, got %+v", tt.id, tt.expected, fees.NormalProcessing)
		}
	}

	// Driving license urgent tier is 1.5x the smart license fee.
	fees := buildFees("driving_license", reg.Services["driving_license"])
	if fees.UrgentProcessing == nil || fees.UrgentProcessing.Amount != 2250 {
		t.Errorf("expected urgent driving license fee 2250, got %+v", fees.UrgentProcessing)
	}
}

func TestBuildFeesLandRegistrationHasNoTiers(t *testing.T) {
	_, reg := testBuilder(t)

	def, ok := reg.Services["land_registration"]
	if !ok {
		t.Fatal("land_registration missing from catalog")
	}
	fees := buildFees("land_registration", def)
	if fees.NormalProcessing != nil || fees.UrgentProcessing != nil || fees.SameDay != nil {
		t.Errorf("expected no fixed tiers for percentage-priced service, got %+v", fees)
	}
}
