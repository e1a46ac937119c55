package models

import "time"

// Service status values reported by citizens at the end of a visit.
const (
	StatusCompleted  = "kaam_bhayo"
	StatusFailed     = "kaam_bhayena"
	StatusInProgress = "chalirahe"
)

// User is an optionally-registered citizen identified by phone number.
type User struct {
	ID             int       `json:"id"`
	Phone          string    `json:"phone"`
	Name           string    `json:"name,omitempty"`
	District       string    `json:"district,omitempty"`
	AgeGroup       string    `json:"age_group,omitempty"`
	Gender         string    `json:"gender,omitempty"`
	EducationLevel string    `json:"education_level,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Visit is one citizen trip to an office for a specific service. It is
// created when the wait timer starts and updated when the visit ends and
// again when the rating is submitted.
type Visit struct {
	ID                  int        `json:"id"`
	OfficeID            int        `json:"office_id"`
	ServiceID           int        `json:"service_id"`
	UserID              *int       `json:"user_id,omitempty"`
	VisitDate           time.Time  `json:"visit_date"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	WaitDurationMinutes *int       `json:"wait_duration_minutes,omitempty"`
	ServiceStatus       string     `json:"service_status"`
	ServiceCompleted    *bool      `json:"service_completed,omitempty"`

	OverallRating            *int `json:"overall_rating,omitempty"`
	StaffBehaviorRating      *int `json:"staff_behavior_rating,omitempty"`
	OfficeCleanlinessRating  *int `json:"office_cleanliness_rating,omitempty"`
	ProcessEfficiencyRating  *int `json:"process_efficiency_rating,omitempty"`
	InformationClarityRating *int `json:"information_clarity_rating,omitempty"`

	AskedForBribe       *bool `json:"asked_for_bribe,omitempty"`
	StaffHelpful        *bool `json:"staff_helpful,omitempty"`
	ProcessClear        *bool `json:"process_clear,omitempty"`
	DocumentsSufficient *bool `json:"documents_sufficient,omitempty"`
	WouldRecommend      *bool `json:"would_recommend,omitempty"`

	WaitReason  string `json:"wait_reason,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
	Complaints  string `json:"complaints,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasRating reports whether the citizen already submitted feedback.
func (v *Visit) HasRating() bool {
	return v.OverallRating != nil
}
