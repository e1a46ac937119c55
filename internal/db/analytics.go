package db

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sajan/nepal-office-tracker/internal/models"
)

type RatedOffice struct {
	Name        string  `json:"name"`
	District    string  `json:"district"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type EfficientOffice struct {
	Name           string  `json:"name"`
	District       string  `json:"district"`
	AvgWaitMinutes float64 `json:"avg_wait_minutes"`
	VisitCount     int     `json:"visit_count"`
}

type BribeOffice struct {
	Name         string `json:"name"`
	District     string `json:"district"`
	BribeReports int    `json:"bribe_reports"`
	TotalVisits  int    `json:"total_visits"`
}

type ProvinceStats struct {
	TotalVisits    int     `json:"total_visits"`
	SuccessRate    float64 `json:"success_rate"`
	AvgRating      float64 `json:"avg_rating"`
	AvgWaitMinutes float64 `json:"avg_wait_minutes"`
}

type RecentVisit struct {
	OfficeName    string    `json:"office_name"`
	ServiceName   string    `json:"service_name"`
	District      string    `json:"district"`
	Rating        *int      `json:"rating,omitempty"`
	WaitMinutes   *int      `json:"wait_minutes,omitempty"`
	ServiceStatus string    `json:"service_status"`
	VisitDate     time.Time `json:"visit_date"`
}

type Dashboard struct {
	TotalOffices            int                      `json:"total_offices"`
	TotalVisits             int                      `json:"total_visits"`
	AvgSuccessRate          float64                  `json:"avg_success_rate"`
	AvgOverallRating        float64                  `json:"avg_overall_rating"`
	TopRatedOffices         []RatedOffice            `json:"top_rated_offices"`
	MostEfficientOffices    []EfficientOffice        `json:"most_efficient_offices"`
	OfficesWithBribeReports []BribeOffice            `json:"offices_with_bribe_reports"`
	LowestRatedOffices      []RatedOffice            `json:"lowest_rated_offices"`
	ProvincialStats         map[string]ProvinceStats `json:"provincial_stats"`
	RecentVisits            []RecentVisit            `json:"recent_visits"`
	LastUpdated             time.Time                `json:"last_updated"`
}

type OfficeAnalytics struct {
	OfficeID         int     `json:"office_id"`
	OfficeName       string  `json:"office_name"`
	OfficeNameNepali string  `json:"office_name_nepali,omitempty"`
	District         string  `json:"district"`
	Province         string  `json:"province"`
	TotalVisits      int     `json:"total_visits"`
	SuccessfulVisits int     `json:"successful_visits"`
	FailedVisits     int     `json:"failed_visits"`
	SuccessRate      float64 `json:"success_rate"`

	AvgOverallRating      float64 `json:"avg_overall_rating"`
	AvgStaffBehavior      float64 `json:"avg_staff_behavior"`
	AvgCleanliness        float64 `json:"avg_cleanliness"`
	AvgEfficiency         float64 `json:"avg_efficiency"`
	AvgInformationClarity float64 `json:"avg_information_clarity"`

	AvgWaitTimeMinutes float64 `json:"avg_wait_time_minutes"`
	MinWaitTimeMinutes int     `json:"min_wait_time_minutes"`
	MaxWaitTimeMinutes int     `json:"max_wait_time_minutes"`

	BribeReports int     `json:"bribe_reports"`
	BribeRate    float64 `json:"bribe_rate"`

	LastUpdated time.Time `json:"last_updated"`
}

type RadarChart struct {
	OfficeName string             `json:"office_name"`
	Metrics    map[string]float64 `json:"metrics"`
}

type Comparison struct {
	Offices     []RadarChart      `json:"offices"`
	MetricsInfo map[string]string `json:"metrics_info"`
}

type RankingParams struct {
	Scope    string // national, province, district
	Province string
	District string
	Metric   string // overall_rating, efficiency, success_rate
	Limit    int
}

type RankedOffice struct {
	Rank        int     `json:"rank"`
	OfficeName  string  `json:"office_name"`
	District    string  `json:"district"`
	Province    string  `json:"province"`
	MetricValue float64 `json:"metric_value"`
	ReviewCount int     `json:"review_count"`
	OfficeID    int     `json:"office_id"`
}

type RankingResult struct {
	Scope       string         `json:"scope"`
	Metric      string         `json:"metric"`
	Rankings    []RankedOffice `json:"rankings"`
	TotalRanked int            `json:"total_ranked"`
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// EfficiencyScore maps an average wait in minutes to a 1-5 radar score,
// shorter waits scoring higher.
func EfficiencyScore(avgWaitMinutes float64) float64 {
	switch {
	case avgWaitMinutes <= 15:
		return 5
	case avgWaitMinutes <= 30:
		return 4
	case avgWaitMinutes <= 60:
		return 3
	case avgWaitMinutes <= 120:
		return 2
	default:
		return 1
	}
}

// IntegrityScore maps a bribe-report rate percentage to a 1-5 radar score,
// fewer reports scoring higher.
func IntegrityScore(bribeRatePct float64) float64 {
	switch {
	case bribeRatePct == 0:
		return 5
	case bribeRatePct <= 5:
		return 4
	case bribeRatePct <= 15:
		return 3
	case bribeRatePct <= 30:
		return 2
	default:
		return 1
	}
}

// minReviewsForRanking keeps one-off visits from dominating the boards.
const minReviewsForRanking = 3

func (s *Store) GetDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{
		ProvincialStats: make(map[string]ProvinceStats),
		LastUpdated:     time.Now().UTC(),
	}

	var successful int
	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM offices),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE service_status = $1),
		       COALESCE(AVG(overall_rating), 0)
		FROM office_visits
	`, models.StatusCompleted).Scan(&d.TotalOffices, &d.TotalVisits, &successful, &d.AvgOverallRating)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard totals: %w", err)
	}
	if d.TotalVisits > 0 {
		d.AvgSuccessRate = round1(float64(successful) / float64(d.TotalVisits) * 100)
	}
	d.AvgOverallRating = round2(d.AvgOverallRating)

	d.TopRatedOffices, err = s.ratedOffices(ctx, "DESC")
	if err != nil {
		return nil, err
	}
	d.LowestRatedOffices, err = s.ratedOffices(ctx, "ASC")
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT o.name, o.district, AVG(v.wait_duration_minutes), COUNT(v.id)
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		WHERE v.wait_duration_minutes IS NOT NULL
		GROUP BY o.id, o.name, o.district
		HAVING COUNT(v.id) >= $1
		ORDER BY AVG(v.wait_duration_minutes) ASC
		LIMIT 5
	`, minReviewsForRanking)
	if err != nil {
		return nil, fmt.Errorf("failed to query efficient offices: %w", err)
	}
	for rows.Next() {
		var e EfficientOffice
		if err := rows.Scan(&e.Name, &e.District, &e.AvgWaitMinutes, &e.VisitCount); err != nil {
			rows.Close()
			return nil, err
		}
		e.AvgWaitMinutes = round1(e.AvgWaitMinutes)
		d.MostEfficientOffices = append(d.MostEfficientOffices, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT o.name, o.district,
		       COUNT(*) FILTER (WHERE v.asked_for_bribe),
		       COUNT(*)
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		GROUP BY o.id, o.name, o.district
		HAVING COUNT(*) FILTER (WHERE v.asked_for_bribe) > 0
		ORDER BY COUNT(*) FILTER (WHERE v.asked_for_bribe) DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bribe reports: %w", err)
	}
	for rows.Next() {
		var b BribeOffice
		if err := rows.Scan(&b.Name, &b.District, &b.BribeReports, &b.TotalVisits); err != nil {
			rows.Close()
			return nil, err
		}
		d.OfficesWithBribeReports = append(d.OfficesWithBribeReports, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT COALESCE(o.province, ''),
		       COUNT(v.id),
		       COUNT(*) FILTER (WHERE v.service_status = $1),
		       COALESCE(AVG(v.overall_rating), 0),
		       COALESCE(AVG(v.wait_duration_minutes), 0)
		FROM offices o
		LEFT JOIN office_visits v ON v.office_id = o.id
		GROUP BY o.province
	`, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query provincial stats: %w", err)
	}
	for rows.Next() {
		var province string
		var stats ProvinceStats
		var successCount int
		if err := rows.Scan(&province, &stats.TotalVisits, &successCount, &stats.AvgRating, &stats.AvgWaitMinutes); err != nil {
			rows.Close()
			return nil, err
		}
		if stats.TotalVisits > 0 {
			stats.SuccessRate = float64(successCount) / float64(stats.TotalVisits) * 100
		}
		stats.AvgRating = round2(stats.AvgRating)
		stats.AvgWaitMinutes = round1(stats.AvgWaitMinutes)
		d.ProvincialStats[province] = stats
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT o.name, sv.service_name, o.district, v.overall_rating,
		       v.wait_duration_minutes, v.service_status, v.visit_date
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		JOIN office_services sv ON sv.id = v.service_id
		ORDER BY v.visit_date DESC, v.id DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visits: %w", err)
	}
	for rows.Next() {
		var r RecentVisit
		if err := rows.Scan(&r.OfficeName, &r.ServiceName, &r.District, &r.Rating,
			&r.WaitMinutes, &r.ServiceStatus, &r.VisitDate); err != nil {
			rows.Close()
			return nil, err
		}
		d.RecentVisits = append(d.RecentVisits, r)
	}
	rows.Close()
	return d, rows.Err()
}

func (s *Store) ratedOffices(ctx context.Context, direction string) ([]RatedOffice, error) {
	if direction != "ASC" {
		direction = "DESC"
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT o.name, o.district, AVG(v.overall_rating), COUNT(v.id)
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		WHERE v.overall_rating IS NOT NULL
		GROUP BY o.id, o.name, o.district
		HAVING COUNT(v.id) >= $1
		ORDER BY AVG(v.overall_rating) %s
		LIMIT 5
	`, direction), minReviewsForRanking)
	if err != nil {
		return nil, fmt.Errorf("failed to query rated offices: %w", err)
	}
	defer rows.Close()

	var offices []RatedOffice
	for rows.Next() {
		var r RatedOffice
		if err := rows.Scan(&r.Name, &r.District, &r.AvgRating, &r.ReviewCount); err != nil {
			return nil, err
		}
		r.AvgRating = round2(r.AvgRating)
		offices = append(offices, r)
	}
	return offices, rows.Err()
}

func (s *Store) GetOfficeAnalytics(ctx context.Context, officeID int) (*OfficeAnalytics, error) {
	a := &OfficeAnalytics{OfficeID: officeID, LastUpdated: time.Now().UTC()}
	var nameNepali, province *string
	err := s.pool.QueryRow(ctx,
		"SELECT name, name_nepali, district, province FROM offices WHERE id = $1", officeID,
	).Scan(&a.OfficeName, &nameNepali, &a.District, &province)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to load office: %w", err)
	}
	if nameNepali != nil {
		a.OfficeNameNepali = *nameNepali
	}
	if province != nil {
		a.Province = *province
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE service_status = $2),
		       COUNT(*) FILTER (WHERE service_status = $3),
		       COALESCE(AVG(overall_rating), 0),
		       COALESCE(AVG(staff_behavior_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
		       COALESCE(AVG(office_cleanliness_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
		       COALESCE(AVG(process_efficiency_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
		       COALESCE(AVG(information_clarity_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
		       COALESCE(AVG(wait_duration_minutes), 0),
		       COALESCE(MIN(wait_duration_minutes), 0),
		       COALESCE(MAX(wait_duration_minutes), 0),
		       COUNT(*) FILTER (WHERE asked_for_bribe)
		FROM office_visits
		WHERE office_id = $1
	`, officeID, models.StatusCompleted, models.StatusFailed).Scan(
		&a.TotalVisits, &a.SuccessfulVisits, &a.FailedVisits,
		&a.AvgOverallRating, &a.AvgStaffBehavior, &a.AvgCleanliness,
		&a.AvgEfficiency, &a.AvgInformationClarity,
		&a.AvgWaitTimeMinutes, &a.MinWaitTimeMinutes, &a.MaxWaitTimeMinutes,
		&a.BribeReports,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query office analytics: %w", err)
	}

	if a.TotalVisits == 0 {
		return a, nil
	}

	a.SuccessRate = round1(float64(a.SuccessfulVisits) / float64(a.TotalVisits) * 100)
	a.AvgOverallRating = round2(a.AvgOverallRating)
	a.AvgStaffBehavior = round2(a.AvgStaffBehavior)
	a.AvgCleanliness = round2(a.AvgCleanliness)
	a.AvgEfficiency = round2(a.AvgEfficiency)
	a.AvgInformationClarity = round2(a.AvgInformationClarity)
	a.AvgWaitTimeMinutes = round1(a.AvgWaitTimeMinutes)
	a.BribeRate = round1(float64(a.BribeReports) / float64(a.TotalVisits) * 100)
	return a, nil
}

var comparisonMetricsInfo = map[string]string{
	"overall_rating": "Overall satisfaction rating (1-5 stars)",
	"efficiency":     "Service efficiency based on wait time",
	"staff_behavior": "Staff helpfulness and behavior rating",
	"cleanliness":    "Office cleanliness and environment rating",
	"integrity":      "Corruption-free service (higher = no bribes reported)",
}

// CompareOffices builds radar chart metrics for each requested office.
// Offices that no longer exist are skipped silently.
func (s *Store) CompareOffices(ctx context.Context, officeIDs []int) (*Comparison, error) {
	if len(officeIDs) < 2 {
		return nil, fmt.Errorf("at least 2 offices required for comparison")
	}

	result := &Comparison{MetricsInfo: comparisonMetricsInfo}
	for _, id := range officeIDs {
		var name string
		err := s.pool.QueryRow(ctx, "SELECT name FROM offices WHERE id = $1", id).Scan(&name)
		if err != nil {
			if err == pgx.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("failed to load office %d: %w", id, err)
		}

		var totalVisits, bribeCount int
		var overall, staff, clean float64
		var avgWait *float64
		err = s.pool.QueryRow(ctx, `
			SELECT COUNT(*),
			       COALESCE(AVG(overall_rating), 0),
			       COALESCE(AVG(staff_behavior_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
			       COALESCE(AVG(office_cleanliness_rating) FILTER (WHERE overall_rating IS NOT NULL), 0),
			       AVG(wait_duration_minutes),
			       COUNT(*) FILTER (WHERE asked_for_bribe)
			FROM office_visits
			WHERE office_id = $1
		`, id).Scan(&totalVisits, &overall, &staff, &clean, &avgWait, &bribeCount)
		if err != nil {
			return nil, fmt.Errorf("failed to query comparison metrics for office %d: %w", id, err)
		}

		metrics := map[string]float64{
			"overall_rating": 0,
			"efficiency":     0,
			"staff_behavior": 0,
			"cleanliness":    0,
			"integrity":      0,
		}
		if totalVisits > 0 {
			wait := 60.0
			if avgWait != nil {
				wait = *avgWait
			}
			bribeRate := float64(bribeCount) / float64(totalVisits) * 100
			metrics["overall_rating"] = round1(overall)
			metrics["efficiency"] = EfficiencyScore(wait)
			metrics["staff_behavior"] = round1(staff)
			metrics["cleanliness"] = round1(clean)
			metrics["integrity"] = IntegrityScore(bribeRate)
		}
		result.Offices = append(result.Offices, RadarChart{OfficeName: name, Metrics: metrics})
	}
	return result, nil
}

func (s *Store) GetRankings(ctx context.Context, params RankingParams) (*RankingResult, error) {
	metric := params.Metric
	if metric == "" {
		metric = "overall_rating"
	}
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	where := "WHERE 1=1"
	var args []any
	argIdx := 1

	if params.Scope == "province" && params.Province != "" {
		where += fmt.Sprintf(" AND o.province = $%d", argIdx)
		args = append(args, params.Province)
		argIdx++
	} else if params.Scope == "district" && params.District != "" {
		where += fmt.Sprintf(" AND o.district = $%d", argIdx)
		args = append(args, params.District)
		argIdx++
	}

	var query string
	switch metric {
	case "overall_rating":
		query = fmt.Sprintf(`
			SELECT o.name, o.district, COALESCE(o.province, ''), AVG(v.overall_rating), COUNT(v.id), o.id
			FROM offices o
			JOIN office_visits v ON v.office_id = o.id
			%s AND v.overall_rating IS NOT NULL
			GROUP BY o.id HAVING COUNT(v.id) >= %d
			ORDER BY AVG(v.overall_rating) DESC
			LIMIT $%d
		`, where, minReviewsForRanking, argIdx)
	case "efficiency":
		query = fmt.Sprintf(`
			SELECT o.name, o.district, COALESCE(o.province, ''), AVG(v.wait_duration_minutes), COUNT(v.id), o.id
			FROM offices o
			JOIN office_visits v ON v.office_id = o.id
			%s AND v.wait_duration_minutes IS NOT NULL
			GROUP BY o.id HAVING COUNT(v.id) >= %d
			ORDER BY AVG(v.wait_duration_minutes) ASC
			LIMIT $%d
		`, where, minReviewsForRanking, argIdx)
	case "success_rate":
		query = fmt.Sprintf(`
			SELECT o.name, o.district, COALESCE(o.province, ''),
			       COUNT(*) FILTER (WHERE v.service_status = '%s')::float / COUNT(v.id) * 100,
			       COUNT(v.id), o.id
			FROM offices o
			JOIN office_visits v ON v.office_id = o.id
			%s
			GROUP BY o.id HAVING COUNT(v.id) >= %d
			ORDER BY 4 DESC
			LIMIT $%d
		`, models.StatusCompleted, where, minReviewsForRanking, argIdx)
	default:
		return nil, fmt.Errorf("unknown ranking metric: %s", metric)
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	result := &RankingResult{Scope: params.Scope, Metric: metric, Rankings: []RankedOffice{}}
	rank := 1
	for rows.Next() {
		var r RankedOffice
		if err := rows.Scan(&r.OfficeName, &r.District, &r.Province, &r.MetricValue, &r.ReviewCount, &r.OfficeID); err != nil {
			return nil, err
		}
		r.MetricValue = round2(r.MetricValue)
		r.Rank = rank
		rank++
		result.Rankings = append(result.Rankings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.TotalRanked = len(result.Rankings)
	return result, nil
}
