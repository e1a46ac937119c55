package models

import "testing"

func fullOffice() Office {
	return Office{
		ID:         "dao_kathmandu",
		Type:       TypeDAO,
		Name:       "District Administration Office, Kathmandu",
		NameNepali: "जिल्ला प्रशासन कार्यालय, काठमाडौं",
		Services:   []Service{{ServiceID: "citizenship_certificate", ServiceName: "Citizenship Certificate"}},
		Location:   &Location{Address: "Babarmahal, Kathmandu", District: "Kathmandu", Province: "Bagmati Province"},
		Contact: &Contact{
			PhoneGeneral: "015362828",
			Email:        "info@daokathmandu.moha.gov.np",
			Website:      "https://daokathmandu.moha.gov.np",
		},
		Staff:          []Staff{{Name: "Rabin Kumar Rai", Position: "Administrative Officer"}},
		OperatingHours: &OperatingHours{MondayFriday: "10:00 AM - 5:00 PM"},
		Metadata:       &Metadata{},
	}
}

func TestCompletenessScore(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Office)
		expected float64
	}{
		{"all fields filled", func(o *Office) {}, 100},
		{"missing email", func(o *Office) { o.Contact.Email = "" }, 90},
		{"missing phone and email", func(o *Office) {
			o.Contact.PhoneGeneral = ""
			o.Contact.Email = ""
		}, 80},
		{"no staff", func(o *Office) { o.Staff = nil }, 90},
		{"no services", func(o *Office) { o.Services = nil }, 90},
		{"no operating hours", func(o *Office) { o.OperatingHours = nil }, 90},
		{"no nepali name", func(o *Office) { o.NameNepali = "" }, 90},
		{"nil location", func(o *Office) { o.Location = nil }, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fullOffice()
			tt.mutate(&o)
			if got := o.CompletenessScore(); got != tt.expected {
				t.Fatalf("expected %.1f, got %.1f", tt.expected, got)
			}
		})
	}
}

func TestCompletenessScoreEmptyOffice(t *testing.T) {
	o := Office{}
	if got := o.CompletenessScore(); got != 0 {
		t.Fatalf("expected 0, got %.1f", got)
	}
}

func TestUpdateCompleteness(t *testing.T) {
	o := fullOffice()
	o.UpdateCompleteness()
	if o.Metadata.CompletenessScore != 100 {
		t.Fatalf("expected stored score 100, got %.1f", o.Metadata.CompletenessScore)
	}

	o.Staff = nil
	o.UpdateCompleteness()
	if o.Metadata.CompletenessScore != 90 {
		t.Fatalf("expected stored score 90 after dropping staff, got %.1f", o.Metadata.CompletenessScore)
	}
}

func TestHasService(t *testing.T) {
	o := fullOffice()
	if !o.HasService("citizenship_certificate") {
		t.Fatal("expected citizenship_certificate to be present")
	}
	if o.HasService("passport_app") {
		t.Fatal("did not expect passport_app")
	}
}

func TestContactPhones(t *testing.T) {
	c := Contact{PhoneGeneral: "015362828", PhonePassport: "015367691"}
	phones := c.Phones()
	if len(phones) != 2 {
		t.Fatalf("expected 2 phones, got %d", len(phones))
	}
	if phones[0] != "015362828" || phones[1] != "015367691" {
		t.Fatalf("unexpected slot order: %v", phones)
	}
}
