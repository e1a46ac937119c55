package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// DistrictIndex lists every district known to the database, and the same
// districts grouped by province for the two-step selection flow.
type DistrictIndex struct {
	Districts []string            `json:"districts"`
	Provinces map[string][]string `json:"provinces"`
}

type OfficeTypeOption struct {
	OfficeType        string `json:"office_type"`
	DisplayName       string `json:"display_name"`
	DisplayNameNepali string `json:"display_name_nepali"`
	Count             int    `json:"count"`
}

type OfficeSummary struct {
	ID         int    `json:"id"`
	OfficeID   string `json:"office_id"`
	Name       string `json:"name"`
	NameNepali string `json:"name_nepali,omitempty"`
	District   string `json:"district,omitempty"`
	Province   string `json:"province,omitempty"`
	OfficeType string `json:"office_type,omitempty"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
}

type ServiceOption struct {
	ID                int            `json:"id"`
	ServiceID         string         `json:"service_id"`
	ServiceName       string         `json:"service_name"`
	ServiceNameNepali string         `json:"service_name_nepali,omitempty"`
	EstimatedTime     string         `json:"estimated_time,omitempty"`
	Fees              map[string]any `json:"fees,omitempty"`
}

type OfficeServices struct {
	OfficeName       string          `json:"office_name"`
	OfficeNameNepali string          `json:"office_name_nepali,omitempty"`
	Services         []ServiceOption `json:"services"`
}

type SearchParams struct {
	District   string `json:"district"`
	Province   string `json:"province"`
	OfficeType string `json:"office_type"`
	Limit      int    `json:"limit"`
}

type SearchResult struct {
	TotalFound int             `json:"total_found"`
	Offices    []OfficeSummary `json:"offices"`
}

var officeTypeDisplay = map[string][2]string{
	"district_administration_office": {"District Administration Office (DAO)", "जिल्ला प्रशासन कार्यालय"},
	"passport_department":            {"Passport Department", "राहदानी विभाग"},
	"transport_department":           {"Department of Transport Management", "यातायात व्यवस्था विभाग"},
	"transport_office":               {"Transport Management Office", "यातायात व्यवस्थापन कार्यालय"},
	"land_department":                {"Department of Land Management", "भूमि व्यवस्थापन विभाग"},
	"land_revenue_office":            {"Land Revenue Office", "मालपोत कार्यालय"},
	"survey_department":              {"Survey Department", "नापी विभाग"},
	"company_registrar":              {"Company Registrar Office", "कम्पनी रजिस्ट्रार कार्यालय"},
}

func (s *Store) DistrictsByProvince(ctx context.Context) (*DistrictIndex, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT district, COALESCE(province, '') FROM offices")
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer rows.Close()

	idx := &DistrictIndex{Provinces: make(map[string][]string)}
	seen := make(map[string]bool)
	for rows.Next() {
		var district, province string
		if err := rows.Scan(&district, &province); err != nil {
			return nil, err
		}
		idx.Provinces[province] = append(idx.Provinces[province], district)
		if !seen[district] {
			seen[district] = true
			idx.Districts = append(idx.Districts, district)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(idx.Districts)
	for _, districts := range idx.Provinces {
		sort.Strings(districts)
	}
	return idx, nil
}

func (s *Store) OfficeTypesInDistrict(ctx context.Context, district string) ([]OfficeTypeOption, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT office_type, COUNT(id)
		FROM offices
		WHERE district = $1
		GROUP BY office_type
		ORDER BY office_type
	`, district)
	if err != nil {
		return nil, fmt.Errorf("failed to query office types: %w", err)
	}
	defer rows.Close()

	var options []OfficeTypeOption
	for rows.Next() {
		var opt OfficeTypeOption
		if err := rows.Scan(&opt.OfficeType, &opt.Count); err != nil {
			return nil, err
		}
		if display, ok := officeTypeDisplay[opt.OfficeType]; ok {
			opt.DisplayName = display[0]
			opt.DisplayNameNepali = display[1]
		} else {
			opt.DisplayName = titleFromSnake(opt.OfficeType)
			opt.DisplayNameNepali = opt.OfficeType
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func titleFromSnake(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func scanOfficeSummary(scan func(dest ...any) error) (OfficeSummary, error) {
	var o OfficeSummary
	var nameNepali, province, address, phone, website *string
	err := scan(&o.ID, &o.OfficeID, &o.Name, &nameNepali, &o.OfficeType, &o.District, &province, &address, &phone, &website)
	if err != nil {
		return o, err
	}
	if nameNepali != nil {
		o.NameNepali = *nameNepali
	}
	if province != nil {
		o.Province = *province
	}
	if address != nil {
		o.Address = *address
	}
	if phone != nil {
		o.Phone = *phone
	}
	if website != nil {
		o.Website = *website
	}
	return o, nil
}

const officeSummaryCols = `id, office_id, name, name_nepali, office_type, district, province, address, phone, website`

func (s *Store) OfficesInDistrict(ctx context.Context, district, officeType string) ([]OfficeSummary, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM offices
		WHERE district = $1 AND office_type = $2
		ORDER BY name
	`, officeSummaryCols), district, officeType)
	if err != nil {
		return nil, fmt.Errorf("failed to query offices: %w", err)
	}
	defer rows.Close()

	var offices []OfficeSummary
	for rows.Next() {
		o, err := scanOfficeSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}

func (s *Store) GetOffice(ctx context.Context, id int) (*OfficeSummary, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM offices WHERE id = $1", officeSummaryCols), id)
	o, err := scanOfficeSummary(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("office %d not found", id)
		}
		return nil, err
	}
	return &o, nil
}

// ServicesForOffice returns the services offered at an office. The estimated
// time falls back to the normal processing tier when the service has no
// explicit processing_time.
func (s *Store) ServicesForOffice(ctx context.Context, officeID int) (*OfficeServices, error) {
	office, err := s.GetOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, service_id, service_name, service_name_nepali, fees, processing_time
		FROM office_services
		WHERE office_id = $1
		ORDER BY service_name
	`, officeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	result := &OfficeServices{OfficeName: office.Name, OfficeNameNepali: office.NameNepali}
	for rows.Next() {
		var opt ServiceOption
		var nameNepali, processingTime *string
		var feesRaw []byte
		if err := rows.Scan(&opt.ID, &opt.ServiceID, &opt.ServiceName, &nameNepali, &feesRaw, &processingTime); err != nil {
			return nil, err
		}
		if nameNepali != nil {
			opt.ServiceNameNepali = *nameNepali
		}
		if len(feesRaw) > 0 {
			_ = json.Unmarshal(feesRaw, &opt.Fees)
		}
		if processingTime != nil && *processingTime != "" {
			opt.EstimatedTime = *processingTime
		} else if normal, ok := opt.Fees["normal_processing"].(map[string]any); ok {
			if days, ok := normal["processing_days"].(string); ok {
				opt.EstimatedTime = days
			}
		}
		result.Services = append(result.Services, opt)
	}
	return result, rows.Err()
}

func (s *Store) SearchOffices(ctx context.Context, params SearchParams) (*SearchResult, error) {
	where := "WHERE 1=1"
	var args []any
	argIdx := 1

	if params.District != "" {
		where += fmt.Sprintf(" AND district = $%d", argIdx)
		args = append(args, params.District)
		argIdx++
	}
	if params.Province != "" {
		where += fmt.Sprintf(" AND province = $%d", argIdx)
		args = append(args, params.Province)
		argIdx++
	}
	if params.OfficeType != "" {
		where += fmt.Sprintf(" AND office_type = $%d", argIdx)
		args = append(args, params.OfficeType)
		argIdx++
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM offices %s ORDER BY name LIMIT $%d", officeSummaryCols, where, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search offices: %w", err)
	}
	defer rows.Close()

	result := &SearchResult{Offices: []OfficeSummary{}}
	for rows.Next() {
		o, err := scanOfficeSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		result.Offices = append(result.Offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.TotalFound = len(result.Offices)
	return result, nil
}
