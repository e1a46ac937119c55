package scrape

import "testing"

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if len(reg.Offices) == 0 {
		t.Error("expected office templates")
	}
	if len(reg.Districts) != 77 {
		t.Errorf("expected 77 district entries, got %d", len(reg.Districts))
	}
	for _, id := range []string{
		"citizenship_certificate", "passport_app", "driving_license",
		"vehicle_registration", "land_registration", "business_license",
		"company_registration",
	} {
		if _, ok := reg.Services[id]; !ok {
			t.Errorf("service catalog missing %s", id)
		}
	}
	if got := reg.OfficeTypeServices["district_administration_office"]; len(got) == 0 {
		t.Error("expected default services for district administration offices")
	}
}

func TestCanonicalServiceID(t *testing.T) {
	reg := &Registry{ServiceAliases: map[string]string{
		"citizenship": "citizenship_certificate",
		"passport":    "passport_app",
	}}

	tests := []struct {
		keyword, want string
	}{
		{"citizenship", "citizenship_certificate"},
		{"passport", "passport_app"},
		{"driving_license", "driving_license"},
		{"licenses", "licenses"},
	}
	for _, tt := range tests {
		if got := reg.CanonicalServiceID(tt.keyword); got != tt.want {
			t.Errorf("CanonicalServiceID(%q) = %q, want %q", tt.keyword, got, tt.want)
		}
	}
}

func TestDistrictDAOTemplates(t *testing.T) {
	reg := &Registry{Districts: []DistrictInfo{
		{
			Name:     "Kathmandu",
			Province: "Bagmati Province",
			Priority: 1,
			Phones:   []string{"01-5362828"},
			Address:  "Babarmahal, Kathmandu",
		},
		{Name: "Rukum East", Province: "Lumbini Province", Priority: 3},
	}}

	templates := reg.DistrictDAOTemplates()
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	ktm := templates[0]
	if ktm.Name != "District Administration Office, Kathmandu" {
		t.Errorf("unexpected name: %s", ktm.Name)
	}
	if ktm.URL != "https://daokathmandu.moha.gov.np" {
		t.Errorf("unexpected URL: %s", ktm.URL)
	}
	if ktm.OfficeType != "district_administration_office" {
		t.Errorf("unexpected office type: %s", ktm.OfficeType)
	}
	if len(ktm.Phones) != 1 || ktm.Address == "" {
		t.Error("expected district contact details carried over")
	}

	if templates[1].URL != "https://daorukumeast.moha.gov.np" {
		t.Errorf("expected slugged URL for multi-word district, got %s", templates[1].URL)
	}
}

func TestDistrictListContainsDuplicateSalyan(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	count := 0
	for _, d := range reg.Districts {
		if d.Name == "Salyan" {
			count++
		}
	}
	// The published district list carries Salyan under both Lumbini and
	// Karnali; the pipeline dedupes by district name when expanding DAOs.
	if count != 2 {
		t.Errorf("expected Salyan twice in the source list, got %d", count)
	}
}
