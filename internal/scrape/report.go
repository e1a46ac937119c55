package scrape

import (
	"math"
	"sort"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

// BuildReport computes the aggregate snapshot of the office set. Read-only;
// safe to call at any point during a run.
func BuildReport(offices []models.Office) *models.AnalysisReport {
	if len(offices) == 0 {
		return nil
	}
	total := len(offices)

	var totalServices, totalStaff int
	var sumCompleteness float64
	var withPhone, withEmail, withWebsite int
	serviceIDs := make(map[string]bool)
	byProvince := make(map[string]int)
	byType := make(map[string]int)

	for i := range offices {
		o := &offices[i]
		totalServices += len(o.Services)
		totalStaff += len(o.Staff)
		sumCompleteness += o.CompletenessScore()
		for _, s := range o.Services {
			serviceIDs[s.ServiceID] = true
		}
		if o.Contact != nil {
			if o.Contact.PhoneGeneral != "" {
				withPhone++
			}
			if o.Contact.Email != "" {
				withEmail++
			}
			if o.Contact.Website != "" {
				withWebsite++
			}
		}
		if o.Location != nil && o.Location.Province != "" {
			byProvince[o.Location.Province]++
		}
		byType[o.Type]++
	}

	matrix := make(map[string]models.ServiceCoverage, len(serviceIDs))
	for id := range serviceIDs {
		offering := 0
		for i := range offices {
			if offices[i].HasService(id) {
				offering++
			}
		}
		matrix[id] = models.ServiceCoverage{
			OfficesCount:       offering,
			CoveragePercentage: float64(offering) / float64(total) * 100,
		}
	}

	// Stable sort keeps insertion order among equal scores.
	ranked := make([]*models.Office, total)
	for i := range offices {
		ranked[i] = &offices[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompletenessScore() > ranked[j].CompletenessScore()
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	top := make([]models.RankedOffice, 0, len(ranked))
	for _, o := range ranked {
		top = append(top, models.RankedOffice{
			Name:          o.Name,
			Type:          o.Type,
			Completeness:  o.CompletenessScore(),
			ServicesCount: len(o.Services),
			StaffCount:    len(o.Staff),
		})
	}

	return &models.AnalysisReport{
		Overview: models.Overview{
			TotalOffices:        total,
			TotalServices:       totalServices,
			UniqueServiceTypes:  len(serviceIDs),
			TotalStaffMembers:   totalStaff,
			AverageCompleteness: round1(sumCompleteness / float64(total)),
		},
		ContactCoverage: models.ContactCoverage{
			OfficesWithPhone:          withPhone,
			PhoneCoveragePercentage:   round1(float64(withPhone) / float64(total) * 100),
			OfficesWithEmail:          withEmail,
			EmailCoveragePercentage:   round1(float64(withEmail) / float64(total) * 100),
			OfficesWithWebsite:        withWebsite,
			WebsiteCoveragePercentage: round1(float64(withWebsite) / float64(total) * 100),
		},
		GeographicDistribution:   byProvince,
		OfficeTypeDistribution:   byType,
		ServiceAvailability:      matrix,
		TopOfficesByCompleteness: top,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
