package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sajan/nepal-office-tracker/internal/models"
)

var (
	ErrOfficeNotFound  = errors.New("office not found")
	ErrServiceNotFound = errors.New("service not found for this office")
	ErrVisitNotFound   = errors.New("visit not found")
)

type StartVisitParams struct {
	OfficeID  int  `json:"office_id" validate:"required"`
	ServiceID int  `json:"service_id" validate:"required"`
	UserID    *int `json:"user_id"`
}

type StartedVisit struct {
	VisitID     int       `json:"visit_id"`
	StartTime   time.Time `json:"start_time"`
	OfficeName  string    `json:"office_name"`
	ServiceName string    `json:"service_name"`
}

type RatingParams struct {
	VisitID int `json:"visit_id" validate:"required"`

	OverallRating            int `json:"overall_rating" validate:"required,min=1,max=5"`
	StaffBehaviorRating      int `json:"staff_behavior_rating" validate:"required,min=1,max=5"`
	OfficeCleanlinessRating  int `json:"office_cleanliness_rating" validate:"required,min=1,max=5"`
	ProcessEfficiencyRating  int `json:"process_efficiency_rating" validate:"required,min=1,max=5"`
	InformationClarityRating int `json:"information_clarity_rating" validate:"required,min=1,max=5"`

	AskedForBribe       bool `json:"asked_for_bribe"`
	StaffHelpful        bool `json:"staff_helpful"`
	ProcessClear        bool `json:"process_clear"`
	DocumentsSufficient bool `json:"documents_sufficient"`
	WouldRecommend      bool `json:"would_recommend"`

	WaitReason  string `json:"wait_reason"`
	Suggestions string `json:"suggestions"`
	Complaints  string `json:"complaints"`
}

type RegisterUserParams struct {
	Phone          string `json:"phone" validate:"required"`
	Name           string `json:"name"`
	District       string `json:"district"`
	AgeGroup       string `json:"age_group"`
	Gender         string `json:"gender"`
	EducationLevel string `json:"education_level"`
}

type VisitStatus struct {
	VisitID            int        `json:"visit_id"`
	OfficeName         string     `json:"office_name"`
	ServiceName        string     `json:"service_name"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	CurrentWaitMinutes int        `json:"current_wait_minutes"`
	ServiceStatus      string     `json:"service_status"`
	HasRating          bool       `json:"has_rating"`
}

type ActiveVisit struct {
	VisitID            int       `json:"visit_id"`
	OfficeName         string    `json:"office_name"`
	ServiceName        string    `json:"service_name"`
	District           string    `json:"district"`
	StartTime          time.Time `json:"start_time"`
	CurrentWaitMinutes int       `json:"current_wait_minutes"`
}

// StartVisit verifies the office and service pair exists, then opens a new
// in-progress visit with the wait timer running.
func (s *Store) StartVisit(ctx context.Context, params StartVisitParams) (*StartedVisit, error) {
	var officeName string
	err := s.pool.QueryRow(ctx, "SELECT name FROM offices WHERE id = $1", params.OfficeID).Scan(&officeName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to verify office: %w", err)
	}

	var serviceName string
	err = s.pool.QueryRow(ctx,
		"SELECT service_name FROM office_services WHERE id = $1 AND office_id = $2",
		params.ServiceID, params.OfficeID,
	).Scan(&serviceName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to verify service: %w", err)
	}

	started := &StartedVisit{OfficeName: officeName, ServiceName: serviceName}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO office_visits (office_id, service_id, user_id, service_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, start_time
	`, params.OfficeID, params.ServiceID, params.UserID, models.StatusInProgress).Scan(&started.VisitID, &started.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	return started, nil
}

// EndVisit stops the timer and records the outcome. The wait duration is the
// whole number of minutes between start and end.
func (s *Store) EndVisit(ctx context.Context, visitID int, serviceStatus string) (*models.Visit, error) {
	completed := serviceStatus == models.StatusCompleted

	row := s.pool.QueryRow(ctx, `
		UPDATE office_visits
		SET end_time = NOW(),
		    service_status = $2,
		    service_completed = $3,
		    wait_duration_minutes = FLOOR(EXTRACT(EPOCH FROM (NOW() - start_time)) / 60),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, office_id, service_id, service_status, wait_duration_minutes
	`, visitID, serviceStatus, completed)

	var v models.Visit
	if err := row.Scan(&v.ID, &v.OfficeID, &v.ServiceID, &v.ServiceStatus, &v.WaitDurationMinutes); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to end visit: %w", err)
	}
	return &v, nil
}

// SubmitRating attaches the citizen's feedback to an ended visit.
func (s *Store) SubmitRating(ctx context.Context, params RatingParams) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE office_visits
		SET overall_rating = $2,
		    staff_behavior_rating = $3,
		    office_cleanliness_rating = $4,
		    process_efficiency_rating = $5,
		    information_clarity_rating = $6,
		    asked_for_bribe = $7,
		    staff_helpful = $8,
		    process_clear = $9,
		    documents_sufficient = $10,
		    would_recommend = $11,
		    wait_reason = $12,
		    suggestions = $13,
		    complaints = $14,
		    updated_at = NOW()
		WHERE id = $1
	`, params.VisitID,
		params.OverallRating, params.StaffBehaviorRating, params.OfficeCleanlinessRating,
		params.ProcessEfficiencyRating, params.InformationClarityRating,
		params.AskedForBribe, params.StaffHelpful, params.ProcessClear,
		params.DocumentsSufficient, params.WouldRecommend,
		params.WaitReason, params.Suggestions, params.Complaints,
	)
	if err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}
	return nil
}

// RegisterUser creates a user keyed by phone number, or returns the existing
// user when the phone is already registered.
func (s *Store) RegisterUser(ctx context.Context, params RegisterUserParams) (*models.User, bool, error) {
	var existing models.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, phone, created_at FROM users WHERE phone = $1", params.Phone,
	).Scan(&existing.ID, &existing.Phone, &existing.CreatedAt)
	if err == nil {
		return &existing, false, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user := models.User{
		Phone:          params.Phone,
		Name:           params.Name,
		District:       params.District,
		AgeGroup:       params.AgeGroup,
		Gender:         params.Gender,
		EducationLevel: params.EducationLevel,
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (phone, name, district, age_group, gender, education_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, params.Phone, params.Name, params.District, params.AgeGroup, params.Gender, params.EducationLevel).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}
	return &user, true, nil
}

// GetVisitStatus reports the live wait time for an ongoing visit, or the
// final duration once the visit has ended.
func (s *Store) GetVisitStatus(ctx context.Context, visitID int) (*VisitStatus, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT v.id, o.name, sv.service_name, v.start_time, v.end_time, v.service_status,
		       v.overall_rating IS NOT NULL
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		JOIN office_services sv ON sv.id = v.service_id
		WHERE v.id = $1
	`, visitID)

	var status VisitStatus
	if err := row.Scan(&status.VisitID, &status.OfficeName, &status.ServiceName,
		&status.StartTime, &status.EndTime, &status.ServiceStatus, &status.HasRating); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to get visit status: %w", err)
	}

	until := time.Now().UTC()
	if status.EndTime != nil {
		until = *status.EndTime
	}
	status.CurrentWaitMinutes = int(until.Sub(status.StartTime).Minutes())
	return &status, nil
}

// ActiveVisits lists every visit whose timer is still running.
func (s *Store) ActiveVisits(ctx context.Context) ([]ActiveVisit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, o.name, sv.service_name, o.district, v.start_time
		FROM office_visits v
		JOIN offices o ON o.id = v.office_id
		JOIN office_services sv ON sv.id = v.service_id
		WHERE v.service_status = $1 AND v.end_time IS NULL
		ORDER BY v.start_time
	`, models.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to query active visits: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	var visits []ActiveVisit
	for rows.Next() {
		var v ActiveVisit
		if err := rows.Scan(&v.VisitID, &v.OfficeName, &v.ServiceName, &v.District, &v.StartTime); err != nil {
			return nil, err
		}
		v.CurrentWaitMinutes = int(now.Sub(v.StartTime).Minutes())
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
