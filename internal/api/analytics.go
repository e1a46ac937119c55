package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sajan/nepal-office-tracker/internal/db"
)

type compareRequest struct {
	OfficeIDs []int `json:"office_ids" validate:"required,min=2"`
}

func (s *Server) handleDashboard(c echo.Context) error {
	dashboard, err := s.Store.GetDashboard(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to build dashboard: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, dashboard)
}

func (s *Server) handleOfficeAnalytics(c echo.Context) error {
	officeID, err := strconv.Atoi(c.Param("office_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid office ID"})
	}

	analytics, err := s.Store.GetOfficeAnalytics(c.Request().Context(), officeID)
	if err != nil {
		if errors.Is(err, db.ErrOfficeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Office not found"})
		}
		c.Logger().Errorf("Failed to get office analytics: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, analytics)
}

func (s *Server) handleCompareOffices(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "At least 2 offices required for comparison"})
	}

	comparison, err := s.Store.CompareOffices(c.Request().Context(), req.OfficeIDs)
	if err != nil {
		c.Logger().Errorf("Failed to compare offices: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, comparison)
}

func (s *Server) handleRankings(c echo.Context) error {
	params := db.RankingParams{
		Scope:    c.Param("scope"),
		Province: c.QueryParam("province"),
		District: c.QueryParam("district"),
		Metric:   c.QueryParam("metric"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			params.Limit = parsed
		}
	}

	result, err := s.Store.GetRankings(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to build rankings: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}
