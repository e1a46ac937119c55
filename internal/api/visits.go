package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sajan/nepal-office-tracker/internal/auth"
	"github.com/sajan/nepal-office-tracker/internal/db"
)

type endVisitRequest struct {
	VisitID       int    `json:"visit_id" validate:"required"`
	ServiceStatus string `json:"service_status" validate:"required,oneof=kaam_bhayo kaam_bhayena"`
}

// feedbackQuestions are the Nepali yes/no questions shown after a visit ends.
var feedbackQuestions = []map[string]any{
	{
		"id":               "asked_for_bribe",
		"question_nepali":  "के तपाईंलाई घुस माग्यो?",
		"question_english": "Did they ask for a bribe?",
		"type":             "boolean",
		"critical":         true,
	},
	{
		"id":               "staff_helpful",
		"question_nepali":  "कर्मचारी सहयोगी र विनम्र थिए?",
		"question_english": "Were the staff helpful and polite?",
		"type":             "boolean",
		"critical":         false,
	},
	{
		"id":               "process_clear",
		"question_nepali":  "प्रक्रिया स्पष्ट र बुझ्न सजिलो थियो?",
		"question_english": "Was the process clear and easy to understand?",
		"type":             "boolean",
		"critical":         false,
	},
	{
		"id":               "documents_sufficient",
		"question_nepali":  "तपाईंसँग भएका कागजात पुगे?",
		"question_english": "Were your documents sufficient?",
		"type":             "boolean",
		"critical":         false,
	},
	{
		"id":               "would_recommend",
		"question_nepali":  "के तपाईं यो कार्यालयलाई अरूलाई सिफारिस गर्नुहुन्छ?",
		"question_english": "Would you recommend this office to others?",
		"type":             "boolean",
		"critical":         false,
	},
}

var waitReasonOptions = []map[string]string{
	{"id": "lunch_break", "nepali": "खाजा समय", "english": "Lunch break"},
	{"id": "system_down", "nepali": "कम्प्युटर बिग्रियो", "english": "Computer/system down"},
	{"id": "staff_absent", "nepali": "कर्मचारी अनुपस्थित", "english": "Staff absent"},
	{"id": "long_queue", "nepali": "लामो लाइन", "english": "Long queue"},
	{"id": "document_issue", "nepali": "कागजात समस्या", "english": "Document issues"},
	{"id": "payment_issue", "nepali": "भुक्तानी समस्या", "english": "Payment issues"},
	{"id": "verification", "nepali": "प्रमाणीकरण", "english": "Verification process"},
	{"id": "other", "nepali": "अन्य", "english": "Other"},
}

func (s *Server) handleStartTimer(c echo.Context) error {
	var params db.StartVisitParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := s.validate.Struct(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// A session token takes precedence over a user_id in the body.
	if userID, ok := auth.GetUserIDFromContext(c); ok {
		params.UserID = &userID
	}

	started, err := s.Store.StartVisit(c.Request().Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrOfficeNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Office not found"})
		case errors.Is(err, db.ErrServiceNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Service not found for this office"})
		}
		c.Logger().Errorf("Failed to start visit: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, started)
}

func (s *Server) handleEndVisit(c echo.Context) error {
	var req endVisitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	visit, err := s.Store.EndVisit(c.Request().Context(), req.VisitID, req.ServiceStatus)
	if err != nil {
		if errors.Is(err, db.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Visit not found"})
		}
		c.Logger().Errorf("Failed to end visit: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"visit_id":              visit.ID,
		"service_status":        visit.ServiceStatus,
		"wait_duration_minutes": visit.WaitDurationMinutes,
		"message":               "Visit ended successfully. Please provide rating and feedback.",
	})
}

func (s *Server) handleSubmitRating(c echo.Context) error {
	var params db.RatingParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := s.validate.Struct(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// Free-text feedback is rendered on public dashboards, so strip markup.
	params.WaitReason = s.sanitize.Sanitize(params.WaitReason)
	params.Suggestions = s.sanitize.Sanitize(params.Suggestions)
	params.Complaints = s.sanitize.Sanitize(params.Complaints)

	if err := s.Store.SubmitRating(c.Request().Context(), params); err != nil {
		if errors.Is(err, db.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Visit not found"})
		}
		c.Logger().Errorf("Failed to submit rating: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":         "धन्यवाद! तपाईंको फिडब्याक सफलतापूर्वक पेश गरियो।",
		"message_english": "Thank you! Your feedback has been submitted successfully.",
		"visit_id":        params.VisitID,
		"overall_rating":  params.OverallRating,
	})
}

func (s *Server) handleFeedbackQuestions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"questions": feedbackQuestions})
}

func (s *Server) handleWaitReasons(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"options": waitReasonOptions})
}

func (s *Server) handleRegisterUser(c echo.Context) error {
	var params db.RegisterUserParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if params.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Phone number is required"})
	}

	user, created, err := s.Store.RegisterUser(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to register user: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	token, err := auth.IssueToken(user.ID, user.Phone)
	if err != nil {
		c.Logger().Errorf("Failed to issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	message := "User registered successfully"
	if !created {
		message = "User already registered"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user_id": user.ID,
		"message": message,
		"token":   token,
	})
}

func (s *Server) handleVisitStatus(c echo.Context) error {
	visitID, err := strconv.Atoi(c.Param("visit_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid visit ID"})
	}

	status, err := s.Store.GetVisitStatus(c.Request().Context(), visitID)
	if err != nil {
		if errors.Is(err, db.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Visit not found"})
		}
		c.Logger().Errorf("Failed to get visit status: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleActiveVisits(c echo.Context) error {
	visits, err := s.Store.ActiveVisits(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list active visits: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if visits == nil {
		visits = []db.ActiveVisit{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"active_visits": visits,
		"total_active":  len(visits),
	})
}
