package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

// ImportStats summarizes one batch import of scraper output.
type ImportStats struct {
	SourceFile string `json:"source_file"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Services   int    `json:"services"`
}

// LatestOutputFile finds the newest scraper output in dir. File names embed a
// sortable timestamp, so the lexically last one is the most recent run.
func LatestOutputFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "comprehensive_nepal_offices_*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no scraper output files found in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// ImportOutputFile loads a scraper output document into the offices and
// office_services tables. Offices that already exist are skipped, so the
// import can be re-run after every scrape.
func (s *Store) ImportOutputFile(ctx context.Context, path string) (*ImportStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc models.OutputDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	stats := &ImportStats{SourceFile: path}
	for _, office := range doc.Offices {
		inserted, services, err := s.importOffice(ctx, office)
		if err != nil {
			log.Printf("Failed to import office %s: %v", office.ID, err)
			continue
		}
		if !inserted {
			stats.Skipped++
			continue
		}
		stats.Imported++
		stats.Services += services
	}
	return stats, nil
}

func (s *Store) importOffice(ctx context.Context, office models.Office) (bool, int, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM offices WHERE office_id = $1)", office.ID,
	).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check office: %w", err)
	}
	if exists {
		return false, 0, nil
	}

	var district, province, address, phone, website string
	if office.Location != nil {
		district = office.Location.District
		province = office.Location.Province
		address = office.Location.Address
	}
	if office.Contact != nil {
		phone = office.Contact.PhoneGeneral
		website = office.Contact.Website
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	var dbID int
	err = tx.QueryRow(ctx, `
		INSERT INTO offices (office_id, name, name_nepali, office_type, district, province, address, phone, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, office.ID, office.Name, nullable(office.NameNepali), office.Type,
		district, nullable(province), nullable(address), nullable(phone), nullable(website),
	).Scan(&dbID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to insert office: %w", err)
	}

	services := 0
	for _, svc := range office.Services {
		feesJSON, err := json.Marshal(svc.Fees)
		if err != nil {
			return false, 0, fmt.Errorf("failed to encode fees for %s: %w", svc.ServiceID, err)
		}
		docsJSON, err := json.Marshal(svc.RequiredDocuments)
		if err != nil {
			return false, 0, fmt.Errorf("failed to encode documents for %s: %w", svc.ServiceID, err)
		}

		var processingTime string
		if svc.ProcessingTimes != nil {
			processingTime = svc.ProcessingTimes.TotalNormal
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO office_services (office_id, service_id, service_name, service_name_nepali, fees, processing_time, required_documents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, dbID, svc.ServiceID, svc.ServiceName, nullable(svc.ServiceNameNepali),
			feesJSON, nullable(processingTime), docsJSON)
		if err != nil {
			return false, 0, fmt.Errorf("failed to insert service %s: %w", svc.ServiceID, err)
		}
		services++
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return true, services, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
