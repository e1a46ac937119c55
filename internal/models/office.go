package models

import "time"

// Office types as stored in the "type" field.
const (
	TypeDAO              = "district_administration_office"
	TypePassportDept     = "passport_department"
	TypeTransportDept    = "transport_department"
	TypeTransportOffice  = "transport_office"
	TypeLandRevenue      = "land_revenue_office"
	TypeLandDept         = "land_department"
	TypeSurveyDept       = "survey_department"
	TypeCompanyRegistrar = "company_registrar"
)

// Contact holds office contact channels. Phone numbers are stored in
// canonical local form (separators and country code stripped).
type Contact struct {
	PhoneGeneral     string `json:"phone_general,omitempty"`
	PhoneCitizenship string `json:"phone_citizenship,omitempty"`
	PhonePassport    string `json:"phone_passport,omitempty"`
	Email            string `json:"email,omitempty"`
	Website          string `json:"website,omitempty"`
	Fax              string `json:"fax,omitempty"`
}

// Phones returns the non-empty phone numbers in slot order.
func (c *Contact) Phones() []string {
	var phones []string
	for _, p := range []string{c.PhoneGeneral, c.PhoneCitizenship, c.PhonePassport} {
		if p != "" {
			phones = append(phones, p)
		}
	}
	return phones
}

type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Location struct {
	Address       string       `json:"address,omitempty"`
	District      string       `json:"district,omitempty"`
	Province      string       `json:"province,omitempty"`
	AddressNepali string       `json:"address_nepali,omitempty"`
	WardNo        int          `json:"ward_no,omitempty"`
	Municipality  string       `json:"municipality,omitempty"`
	PostalCode    string       `json:"postal_code,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

type Staff struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Section    string `json:"section,omitempty"`
	Contact    string `json:"contact,omitempty"`
	NameNepali string `json:"name_nepali,omitempty"`
}

// Fee is a single price tier for a government service.
type Fee struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	ProcessingDays string  `json:"processing_days,omitempty"`
	Description    string  `json:"description,omitempty"`
}

// ServiceFees groups the up-to-three processing tiers of a service.
type ServiceFees struct {
	NormalProcessing *Fee `json:"normal_processing,omitempty"`
	UrgentProcessing *Fee `json:"urgent_processing,omitempty"`
	SameDay          *Fee `json:"same_day,omitempty"`
}

type ProcessingTimes struct {
	DocumentSubmission  string `json:"document_submission,omitempty"`
	BiometricCapture    string `json:"biometric_capture,omitempty"`
	VerificationProcess string `json:"verification_process,omitempty"`
	TotalNormal         string `json:"total_normal,omitempty"`
	TotalUrgent         string `json:"total_urgent,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

type Section struct {
	SectionName string  `json:"section_name"`
	Staff       []Staff `json:"staff"`
}

type Service struct {
	ServiceID         string           `json:"service_id"`
	ServiceName       string           `json:"service_name"`
	ServiceNameNepali string           `json:"service_name_nepali,omitempty"`
	Sections          []Section        `json:"sections,omitempty"`
	Fees              *ServiceFees     `json:"fees,omitempty"`
	ProcessingTimes   *ProcessingTimes `json:"processing_times,omitempty"`
	RequiredDocuments []string         `json:"required_documents,omitempty"`
	ServiceProcedures []string         `json:"service_procedures,omitempty"`
}

type OperatingHours struct {
	MondayFriday string `json:"monday_friday,omitempty"`
	Saturday     string `json:"saturday,omitempty"`
	Sunday       string `json:"sunday,omitempty"`
	LunchBreak   string `json:"lunch_break,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Metadata tracks provenance and quality of a record. CompletenessScore is
// derived from the record itself; callers must go through
// Office.UpdateCompleteness rather than setting it directly.
type Metadata struct {
	DataSource         string  `json:"data_source"`
	LastScraped        string  `json:"last_scraped"`
	DataQuality        string  `json:"data_quality"`
	VerificationStatus string  `json:"verification_status"`
	SchemaVersion      string  `json:"schema_version"`
	CompletenessScore  float64 `json:"completeness_score"`
	ScraperVersion     string  `json:"scraper_version,omitempty"`
	ExtractionMethod   string  `json:"extraction_method,omitempty"`
}

// Office is the top-level record for one government office.
type Office struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	NameNepali     string          `json:"name_nepali,omitempty"`
	Services       []Service       `json:"services,omitempty"`
	Location       *Location       `json:"location,omitempty"`
	Contact        *Contact        `json:"contact,omitempty"`
	Staff          []Staff         `json:"staff,omitempty"`
	OperatingHours *OperatingHours `json:"operating_hours,omitempty"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
}

// completenessChecks is the number of fields tracked by the scorer.
const completenessChecks = 10

// CompletenessScore computes data completeness as a percentage in [0, 100].
// It is a pure function of the record: ten tracked fields, each worth an
// equal share.
func (o *Office) CompletenessScore() float64 {
	filled := 0
	if o.Name != "" {
		filled++
	}
	if o.Location != nil && o.Location.Address != "" {
		filled++
	}
	if o.Location != nil && o.Location.District != "" {
		filled++
	}
	if o.Contact != nil && o.Contact.PhoneGeneral != "" {
		filled++
	}
	if o.Contact != nil && o.Contact.Email != "" {
		filled++
	}
	if len(o.Services) > 0 {
		filled++
	}
	if len(o.Staff) > 0 {
		filled++
	}
	if o.OperatingHours != nil {
		filled++
	}
	if o.Contact != nil && o.Contact.Website != "" {
		filled++
	}
	if o.NameNepali != "" {
		filled++
	}
	return float64(filled) / completenessChecks * 100
}

// UpdateCompleteness recomputes the stored completeness score. Every mutator
// that touches a scored field must call this afterwards so the stored value
// is never stale.
func (o *Office) UpdateCompleteness() {
	if o.Metadata != nil {
		o.Metadata.CompletenessScore = o.CompletenessScore()
	}
}

// HasService reports whether the office already offers the given service id.
func (o *Office) HasService(serviceID string) bool {
	for _, s := range o.Services {
		if s.ServiceID == serviceID {
			return true
		}
	}
	return false
}

// OutputMetadata is the top-level metadata block of the output document.
type OutputMetadata struct {
	Version        string    `json:"version"`
	ScraperType    string    `json:"scraper_type"`
	GenerationDate time.Time `json:"generation_date"`
	TotalOffices   int       `json:"total_offices"`
	DataQuality    string    `json:"data_quality"`
	CoverageScope  string    `json:"coverage_scope"`
}

// OutputDocument is the JSON document written at the end of a scrape run and
// consumed by the feedback backend's batch importer.
type OutputDocument struct {
	Metadata       OutputMetadata  `json:"metadata"`
	DataSources    []string        `json:"data_sources"`
	AnalysisReport *AnalysisReport `json:"analysis_report,omitempty"`
	Offices        []Office        `json:"offices"`
}
