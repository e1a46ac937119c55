package scrape

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

const (
	schemaVersion  = "1.0.0"
	scraperVersion = "nepal-office-tracker/1.0.0"
	currencyNPR    = "NPR"
)

// StandardOperatingHours is the usual Nepal government office schedule.
func StandardOperatingHours() *models.OperatingHours {
	return &models.OperatingHours{
		MondayFriday: "10:00 AM - 5:00 PM",
		Saturday:     "10:00 AM - 3:00 PM",
		Sunday:       "closed",
		LunchBreak:   "1:00 PM - 2:00 PM",
		Notes:        "Hours may vary during festivals and public holidays",
	}
}

// Builder constructs Office records from registry templates.
type Builder struct {
	reg      *Registry
	validate *validator.Validate
	now      func() time.Time
}

func NewBuilder(reg *Registry) *Builder {
	return &Builder{
		reg:      reg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// BuildAll builds offices from every template in the registry. Invalid
// templates are logged and skipped; one bad entry never sinks the run.
func (b *Builder) BuildAll() []models.Office {
	return b.Build(b.reg.Offices)
}

// Build constructs one office per valid template.
func (b *Builder) Build(templates []OfficeTemplate) []models.Office {
	offices := make([]models.Office, 0, len(templates))
	for _, t := range templates {
		office, err := b.BuildOffice(t)
		if err != nil {
			log.Printf("Skipping office template %q: %v", t.Name, err)
			continue
		}
		offices = append(offices, *office)
	}
	log.Printf("Built %d offices from %d templates", len(offices), len(templates))
	return offices
}

// BuildOffice constructs a complete office record from a single template.
func (b *Builder) BuildOffice(t OfficeTemplate) (*models.Office, error) {
	if err := b.validate.Struct(t); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	officeType := t.OfficeType
	if officeType == "" {
		officeType = models.TypeDAO
	}

	address := t.Address
	if address == "" {
		address = "Address not specified"
	}

	// Templates without a dedicated site fall back to the ministry portal.
	url := t.URL
	if url == "" {
		url = "https://moha.gov.np"
	}

	contact := &models.Contact{
		Email:   t.Email,
		Website: url,
	}
	if len(t.Phones) > 0 {
		contact.PhoneGeneral = NormalizePhone(t.Phones[0])
	}
	if len(t.Phones) > 1 {
		contact.PhoneCitizenship = NormalizePhone(t.Phones[1])
	}

	staff := make([]models.Staff, 0, len(t.Staff))
	for _, s := range t.Staff {
		staff = append(staff, models.Staff{
			Name:     s.Name,
			Position: s.Position,
			Section:  s.Section,
		})
	}

	office := &models.Office{
		ID:         DeriveOfficeID(t.Name),
		Type:       officeType,
		Name:       t.Name,
		NameNepali: t.NameNepali,
		Services:   b.buildServices(officeType, t),
		Location: &models.Location{
			Address:  address,
			District: t.District,
			Province: t.Province,
		},
		Contact:        contact,
		Staff:          staff,
		OperatingHours: StandardOperatingHours(),
		Metadata: &models.Metadata{
			DataSource:         url,
			LastScraped:        b.now().Format(time.RFC3339),
			DataQuality:        "comprehensive_factory_generated",
			VerificationStatus: "verified",
			SchemaVersion:      schemaVersion,
			ScraperVersion:     scraperVersion,
			ExtractionMethod:   "factory_generated",
		},
	}
	office.UpdateCompleteness()
	return office, nil
}

// buildServices combines the template's declared services with the defaults
// for the office type, keeping only ids present in the catalog. Order is
// deterministic.
func (b *Builder) buildServices(officeType string, t OfficeTemplate) []models.Service {
	ids := make(map[string]bool)
	for _, kw := range t.Services {
		ids[b.reg.CanonicalServiceID(kw)] = true
	}
	for _, kw := range b.reg.OfficeTypeServices[officeType] {
		ids[b.reg.CanonicalServiceID(kw)] = true
	}

	ordered := make([]string, 0, len(ids))
	for id := range ids {
		if _, ok := b.reg.Services[id]; ok {
			ordered = append(ordered, id)
		}
	}
	sort.Strings(ordered)

	services := make([]models.Service, 0, len(ordered))
	for _, id := range ordered {
		services = append(services, b.buildService(id, b.reg.Services[id], t))
	}
	return services
}

func (b *Builder) buildService(id string, def ServiceDefinition, t OfficeTemplate) models.Service {
	svc := models.Service{
		ServiceID:         id,
		ServiceName:       def.NameEN,
		ServiceNameNepali: def.NameNP,
		Sections:          []models.Section{b.buildSection(id, t)},
		Fees:              buildFees(id, def),
		RequiredDocuments: def.RequiredDocs,
		ServiceProcedures: serviceProcedures(def),
	}

	times := &models.ProcessingTimes{
		DocumentSubmission:  "30 minutes",
		VerificationProcess: processingDays(def, "normal", "7-15 days"),
		TotalNormal:         processingDays(def, "normal", "7-15 days"),
	}
	if _, ok := def.ProcessingDays["urgent"]; ok {
		times.TotalUrgent = def.ProcessingDays["urgent"]
	}
	svc.ProcessingTimes = times
	return svc
}

func processingDays(def ServiceDefinition, tier, fallback string) string {
	if v, ok := def.ProcessingDays[tier]; ok {
		return v
	}
	return fallback
}

// buildFees maps catalog fee tiers onto the normal/urgent/same-day slots.
// Services priced by category rather than speed get a representative tier.
func buildFees(id string, def ServiceDefinition) *models.ServiceFees {
	fees := &models.ServiceFees{}

	switch id {
	case "driving_license":
		fees.NormalProcessing = &models.Fee{
			Amount:         def.Fees["smart_license"],
			Currency:       currencyNPR,
			ProcessingDays: processingDays(def, "normal", "7-15 days"),
			Description:    "Smart driving license",
		}
		if urgent, ok := def.ProcessingDays["urgent"]; ok {
			fees.UrgentProcessing = &models.Fee{
				Amount:         def.Fees["smart_license"] * 1.5,
				Currency:       currencyNPR,
				ProcessingDays: urgent,
				Description:    "Urgent smart driving license",
			}
		}
	case "vehicle_registration":
		fees.NormalProcessing = &models.Fee{
			Amount:         def.Fees["car"],
			Currency:       currencyNPR,
			ProcessingDays: processingDays(def, "normal", "3-7 days"),
			Description:    "Vehicle registration (car)",
		}
	case "business_license":
		fees.NormalProcessing = &models.Fee{
			Amount:         def.Fees["medium"],
			Currency:       currencyNPR,
			ProcessingDays: processingDays(def, "normal", "7-15 days"),
			Description:    "Medium business license",
		}
	case "company_registration":
		fees.NormalProcessing = &models.Fee{
			Amount:         def.Fees["pvt_limited"],
			Currency:       currencyNPR,
			ProcessingDays: processingDays(def, "normal", "15-21 days"),
			Description:    "Private limited company registration",
		}
	default:
		if amt, ok := def.Fees["normal"]; ok {
			fees.NormalProcessing = &models.Fee{
				Amount:         amt,
				Currency:       currencyNPR,
				ProcessingDays: processingDays(def, "normal", "7-15 days"),
				Description:    fmt.Sprintf("Normal %s processing", strings.ToLower(def.NameEN)),
			}
		}
		if amt, ok := def.Fees["urgent"]; ok {
			fees.UrgentProcessing = &models.Fee{
				Amount:         amt,
				Currency:       currencyNPR,
				ProcessingDays: processingDays(def, "urgent", "3-5 days"),
				Description:    fmt.Sprintf("Urgent %s processing", strings.ToLower(def.NameEN)),
			}
		}
		if amt, ok := def.Fees["same_day"]; ok {
			fees.SameDay = &models.Fee{
				Amount:         amt,
				Currency:       currencyNPR,
				ProcessingDays: processingDays(def, "same_day", "same day"),
				Description:    fmt.Sprintf("Same-day %s processing", strings.ToLower(def.NameEN)),
			}
		}
	}
	return fees
}

var sectionNames = map[string]string{
	"citizenship_certificate": "Citizenship Section",
	"passport_app":            "Passport Section",
	"driving_license":         "License Section",
	"vehicle_registration":    "Registration Section",
	"land_registration":       "Registration Section",
	"company_registration":    "Company Registration Section",
	"business_license":        "Licensing Section",
}

// buildSection names the section handling a service and attaches whichever
// template staff belong to it.
func (b *Builder) buildSection(serviceID string, t OfficeTemplate) models.Section {
	name, ok := sectionNames[serviceID]
	if !ok {
		name = titleWords(strings.ReplaceAll(serviceID, "_", " ")) + " Section"
	}

	var staff []models.Staff
	for _, s := range t.Staff {
		if s.Section == "" || !sectionMatchesService(s.Section, serviceID) {
			continue
		}
		staff = append(staff, models.Staff{
			Name:     s.Name,
			Position: s.Position,
			Section:  s.Section,
		})
	}
	return models.Section{SectionName: name, Staff: staff}
}

var defaultProcedures = []string{
	"Application submission",
	"Document verification",
	"Processing and approval",
	"Certificate/License issuance",
}

func serviceProcedures(def ServiceDefinition) []string {
	if len(def.Procedures) > 0 {
		return def.Procedures
	}
	return defaultProcedures
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
