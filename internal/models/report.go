package models

// Overview summarizes the whole dataset.
type Overview struct {
	TotalOffices        int     `json:"total_offices"`
	TotalServices       int     `json:"total_services"`
	UniqueServiceTypes  int     `json:"unique_service_types"`
	TotalStaffMembers   int     `json:"total_staff_members"`
	AverageCompleteness float64 `json:"average_completeness"`
}

// ContactCoverage reports how many offices carry each contact channel.
type ContactCoverage struct {
	OfficesWithPhone          int     `json:"offices_with_phone"`
	PhoneCoveragePercentage   float64 `json:"phone_coverage_percentage"`
	OfficesWithEmail          int     `json:"offices_with_email"`
	EmailCoveragePercentage   float64 `json:"email_coverage_percentage"`
	OfficesWithWebsite        int     `json:"offices_with_website"`
	WebsiteCoveragePercentage float64 `json:"website_coverage_percentage"`
}

// ServiceCoverage describes how widely one service is offered.
type ServiceCoverage struct {
	OfficesCount       int     `json:"offices_count"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// RankedOffice is one row of the completeness leaderboard.
type RankedOffice struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Completeness  float64 `json:"completeness"`
	ServicesCount int     `json:"services_count"`
	StaffCount    int     `json:"staff_count"`
}

// AnalysisReport is the aggregate section of the output document.
type AnalysisReport struct {
	Overview                 Overview                   `json:"overview"`
	ContactCoverage          ContactCoverage            `json:"contact_coverage"`
	GeographicDistribution   map[string]int             `json:"geographic_distribution"`
	OfficeTypeDistribution   map[string]int             `json:"office_type_distribution"`
	ServiceAvailability      map[string]ServiceCoverage `json:"service_availability_matrix"`
	TopOfficesByCompleteness []RankedOffice             `json:"top_offices_by_completeness"`
}
