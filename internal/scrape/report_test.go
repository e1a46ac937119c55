package scrape

import (
	"testing"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

func reportOffice(id, name, province string, services []string, phone string) models.Office {
	var svcs []models.Service
	for _, s := range services {
		svcs = append(svcs, models.Service{ServiceID: s, ServiceName: s})
	}
	o := models.Office{
		ID:       id,
		Type:     models.TypeDAO,
		Name:     name,
		Services: svcs,
		Location: &models.Location{Address: "x", District: "Kathmandu", Province: province},
		Contact:  &models.Contact{PhoneGeneral: phone},
	}
	return o
}

func TestBuildReportEmpty(t *testing.T) {
	if got := BuildReport(nil); got != nil {
		t.Errorf("expected nil report for no offices, got %+v", got)
	}
}

func TestBuildReportOverview(t *testing.T) {
	offices := []models.Office{
		reportOffice("a", "A", "Bagmati Province", []string{"citizenship_certificate", "passport_app"}, "015362828"),
		reportOffice("b", "B", "Bagmati Province", []string{"citizenship_certificate"}, ""),
		reportOffice("c", "C", "Gandaki Province", nil, "061521045"),
	}
	offices[0].Staff = []models.Staff{{Name: "Rabin Kumar Rai", Position: "Officer"}}

	r := BuildReport(offices)
	if r.Overview.TotalOffices != 3 {
		t.Errorf("total offices: got %d", r.Overview.TotalOffices)
	}
	if r.Overview.TotalServices != 3 {
		t.Errorf("total services: got %d", r.Overview.TotalServices)
	}
	if r.Overview.UniqueServiceTypes != 2 {
		t.Errorf("unique service types: got %d", r.Overview.UniqueServiceTypes)
	}
	if r.Overview.TotalStaffMembers != 1 {
		t.Errorf("staff members: got %d", r.Overview.TotalStaffMembers)
	}
	if r.GeographicDistribution["Bagmati Province"] != 2 || r.GeographicDistribution["Gandaki Province"] != 1 {
		t.Errorf("unexpected province distribution: %v", r.GeographicDistribution)
	}
	if r.OfficeTypeDistribution[models.TypeDAO] != 3 {
		t.Errorf("unexpected type distribution: %v", r.OfficeTypeDistribution)
	}
}

func TestBuildReportContactCoverage(t *testing.T) {
	offices := []models.Office{
		reportOffice("a", "A", "Bagmati Province", nil, "015362828"),
		reportOffice("b", "B", "Bagmati Province", nil, ""),
		reportOffice("c", "C", "Bagmati Province", nil, ""),
	}

	r := BuildReport(offices)
	if r.ContactCoverage.OfficesWithPhone != 1 {
		t.Errorf("offices with phone: got %d", r.ContactCoverage.OfficesWithPhone)
	}
	if r.ContactCoverage.PhoneCoveragePercentage != 33.3 {
		t.Errorf("phone coverage: got %v, want 33.3", r.ContactCoverage.PhoneCoveragePercentage)
	}
	if r.ContactCoverage.EmailCoveragePercentage != 0 {
		t.Errorf("email coverage: got %v", r.ContactCoverage.EmailCoveragePercentage)
	}
}

func TestBuildReportServiceCoverageUnrounded(t *testing.T) {
	offices := []models.Office{
		reportOffice("a", "A", "Bagmati Province", []string{"citizenship_certificate"}, ""),
		reportOffice("b", "B", "Bagmati Province", nil, ""),
		reportOffice("c", "C", "Bagmati Province", nil, ""),
		reportOffice("d", "D", "Bagmati Province", nil, ""),
	}

	r := BuildReport(offices)
	cov, ok := r.ServiceAvailability["citizenship_certificate"]
	if !ok {
		t.Fatal("missing service coverage entry")
	}
	if cov.OfficesCount != 1 {
		t.Errorf("offices count: got %d", cov.OfficesCount)
	}
	if cov.CoveragePercentage != 25.0 {
		t.Errorf("coverage: got %v, want 25.0", cov.CoveragePercentage)
	}
}

func TestBuildReportTopOfficesStableOrder(t *testing.T) {
	var offices []models.Office
	for _, name := range []string{"First", "Second", "Third"} {
		offices = append(offices, reportOffice(name, name, "Bagmati Province", nil, ""))
	}

	r := BuildReport(offices)
	if len(r.TopOfficesByCompleteness) != 3 {
		t.Fatalf("expected 3 ranked offices, got %d", len(r.TopOfficesByCompleteness))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if r.TopOfficesByCompleteness[i].Name != want {
			t.Errorf("rank %d: got %s, want %s", i, r.TopOfficesByCompleteness[i].Name, want)
		}
	}
}

func TestBuildReportTopOfficesLimit(t *testing.T) {
	var offices []models.Office
	for i := 0; i < 12; i++ {
		offices = append(offices, reportOffice(string(rune('a'+i)), string(rune('a'+i)), "Bagmati Province", nil, ""))
	}

	r := BuildReport(offices)
	if len(r.TopOfficesByCompleteness) != 10 {
		t.Errorf("expected top list capped at 10, got %d", len(r.TopOfficesByCompleteness))
	}
}
