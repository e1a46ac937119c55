package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sajan/nepal-office-tracker/internal/db"
)

func (s *Server) handleDistricts(c echo.Context) error {
	idx, err := s.Store.DistrictsByProvince(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list districts: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if len(idx.Districts) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No offices found in database"})
	}
	return c.JSON(http.StatusOK, idx)
}

func (s *Server) handleOfficeTypes(c echo.Context) error {
	district := c.Param("district")
	types, err := s.Store.OfficeTypesInDistrict(c.Request().Context(), district)
	if err != nil {
		c.Logger().Errorf("Failed to list office types: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if len(types) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No offices found in district: %s", district),
		})
	}
	return c.JSON(http.StatusOK, types)
}

func (s *Server) handleOfficesInDistrict(c echo.Context) error {
	district := c.Param("district")
	officeType := c.Param("office_type")

	offices, err := s.Store.OfficesInDistrict(c.Request().Context(), district, officeType)
	if err != nil {
		c.Logger().Errorf("Failed to list offices: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if len(offices) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No %s found in %s", officeType, district),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"district":    district,
		"office_type": officeType,
		"offices":     offices,
	})
}

func (s *Server) handleOfficeServices(c echo.Context) error {
	officeID, err := strconv.Atoi(c.Param("office_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid office ID"})
	}

	services, err := s.Store.ServicesForOffice(c.Request().Context(), officeID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Office not found"})
	}
	if len(services.Services) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No services found for this office"})
	}
	return c.JSON(http.StatusOK, services)
}

func (s *Server) handleSearchOffices(c echo.Context) error {
	var params db.SearchParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result, err := s.Store.SearchOffices(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to search offices: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}
