package scrape

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/offices.yaml config/services.yaml config/districts.yaml
var configFS embed.FS

// StaffTemplate is a staff entry in the office registry.
type StaffTemplate struct {
	Name     string `yaml:"name" validate:"required"`
	Position string `yaml:"position" validate:"required"`
	Section  string `yaml:"section,omitempty"`
}

// OfficeTemplate is one statically-known office. Templates are validated at
// build time; an invalid template is skipped, not fatal.
type OfficeTemplate struct {
	Name       string          `yaml:"name" validate:"required"`
	NameNepali string          `yaml:"name_nepali,omitempty"`
	URL        string          `yaml:"url,omitempty" validate:"omitempty,url"`
	OfficeType string          `yaml:"office_type,omitempty"`
	District   string          `yaml:"district" validate:"required"`
	Province   string          `yaml:"province" validate:"required"`
	Address    string          `yaml:"address,omitempty"`
	Phones     []string        `yaml:"phones,omitempty"`
	Email      string          `yaml:"email,omitempty" validate:"omitempty,email"`
	Services   []string        `yaml:"services,omitempty"`
	Staff      []StaffTemplate `yaml:"staff,omitempty"`
}

// ServiceDefinition describes one government service: names, fee tiers,
// processing windows, paperwork, and the steps a citizen walks through.
type ServiceDefinition struct {
	NameEN         string             `yaml:"name_en" validate:"required"`
	NameNP         string             `yaml:"name_np,omitempty"`
	Fees           map[string]float64 `yaml:"fees,omitempty"`
	ProcessingDays map[string]string  `yaml:"processing_days,omitempty"`
	RequiredDocs   []string           `yaml:"required_docs,omitempty"`
	Procedures     []string           `yaml:"procedures,omitempty"`
}

// DistrictInfo is one of Nepal's 77 districts, with contact details where a
// DAO's phone book entry is publicly known. Priority 1 marks major cities.
type DistrictInfo struct {
	Name     string          `yaml:"name" validate:"required"`
	Province string          `yaml:"province" validate:"required"`
	Priority int             `yaml:"priority,omitempty"`
	Phones   []string        `yaml:"phones,omitempty"`
	Address  string          `yaml:"address,omitempty"`
	Staff    []StaffTemplate `yaml:"staff,omitempty"`
}

// Registry holds all embedded configuration: office templates, service
// definitions, the office-type to service mapping, and the district list.
type Registry struct {
	Offices            []OfficeTemplate             `yaml:"offices"`
	Services           map[string]ServiceDefinition `yaml:"services"`
	ServiceAliases     map[string]string            `yaml:"service_aliases"`
	OfficeTypeServices map[string][]string          `yaml:"office_type_services"`
	Districts          []DistrictInfo               `yaml:"districts"`
}

// CanonicalServiceID resolves a template service keyword to its catalog id.
func (r *Registry) CanonicalServiceID(keyword string) string {
	if id, ok := r.ServiceAliases[keyword]; ok {
		return id
	}
	return keyword
}

// LoadRegistry reads the embedded configuration files. Environment variables
// in the YAML (e.g. ${SCRAPER_UA}) are expanded before parsing.
func LoadRegistry() (*Registry, error) {
	reg := &Registry{}

	offices, err := readExpanded("config/offices.yaml")
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(offices, reg); err != nil {
		return nil, fmt.Errorf("parsing offices.yaml: %w", err)
	}

	services, err := readExpanded("config/services.yaml")
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(services, reg); err != nil {
		return nil, fmt.Errorf("parsing services.yaml: %w", err)
	}

	districts, err := readExpanded("config/districts.yaml")
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(districts, reg); err != nil {
		return nil, fmt.Errorf("parsing districts.yaml: %w", err)
	}

	return reg, nil
}

func readExpanded(path string) ([]byte, error) {
	data, err := configFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []byte(os.ExpandEnv(string(data))), nil
}

// DistrictDAOTemplates expands the district list into one DAO template per
// district. URLs follow the moha.gov.np convention; known contact details
// are filled in where the district list carries them.
func (r *Registry) DistrictDAOTemplates() []OfficeTemplate {
	templates := make([]OfficeTemplate, 0, len(r.Districts))
	for _, d := range r.Districts {
		slug := nonAlnumRun.ReplaceAllString(strings.ToLower(d.Name), "")
		t := OfficeTemplate{
			Name:       "District Administration Office, " + d.Name,
			NameNepali: "जिल्ला प्रशासन कार्यालय, " + d.Name,
			URL:        "https://dao" + slug + ".moha.gov.np",
			OfficeType: "district_administration_office",
			District:   d.Name,
			Province:   d.Province,
			Address:    d.Address,
			Phones:     d.Phones,
			Services:   []string{"citizenship", "passport", "licenses"},
			Staff:      d.Staff,
		}
		templates = append(templates, t)
	}
	return templates
}
