package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sajan/nepal-office-tracker/internal/auth"
	"github.com/sajan/nepal-office-tracker/internal/db"
)

type Server struct {
	Store    *db.Store
	Echo     *echo.Echo
	DB       *pgxpool.Pool
	validate *validator.Validate
	sanitize *bluemonday.Policy

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key", "X-Admin-Secret"},
	}))

	s := &Server{
		DB:       pool,
		Store:    db.NewStore(pool),
		Echo:     e,
		validate: validator.New(),
		sanitize: bluemonday.StrictPolicy(),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api")

	// Office selection flow: district -> office type -> office -> service
	sel := api.Group("/selection")
	sel.Use(auth.RequireAPIKey)
	sel.GET("/districts", s.handleDistricts)
	sel.GET("/office-types/:district", s.handleOfficeTypes)
	sel.GET("/offices/:district/:office_type", s.handleOfficesInDistrict)
	sel.GET("/services/:office_id", s.handleOfficeServices)
	sel.POST("/search", s.handleSearchOffices)

	// Visit tracking: timer start -> service end -> rating
	visit := api.Group("/visit")
	visit.Use(auth.RequireAPIKey)
	visit.POST("/start-timer", s.handleStartTimer, auth.OptionalUser)
	visit.POST("/end-visit", s.handleEndVisit)
	visit.POST("/rating", s.handleSubmitRating)
	visit.GET("/feedback-questions", s.handleFeedbackQuestions)
	visit.GET("/wait-reasons", s.handleWaitReasons)
	visit.POST("/register-user", s.handleRegisterUser)
	visit.GET("/visit-status/:visit_id", s.handleVisitStatus)
	visit.GET("/active-visits", s.handleActiveVisits)

	// Analytics and comparisons
	analytics := api.Group("/analytics")
	analytics.Use(auth.RequireAPIKey)
	analytics.GET("/dashboard", s.handleDashboard)
	analytics.GET("/office/:office_id", s.handleOfficeAnalytics)
	analytics.POST("/compare", s.handleCompareOffices)
	analytics.GET("/rankings/:scope", s.handleRankings)

	// Admin routes (data import)
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/import-data", s.handleImportData)
	admin.GET("/job/:id", s.handleJobStatus)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// handleImportData loads the latest scraper output into the database in a
// background goroutine and returns 202 immediately.
func (s *Server) handleImportData(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "An import job is already running",
			"job_id": job.ID,
		})
	}

	dataDir := strings.TrimSpace(c.QueryParam("dir"))
	if dataDir == "" {
		dataDir = "data"
	}

	sourceFile, err := db.LatestOutputFile(dataDir)
	if err != nil {
		s.jobMu.Unlock()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// context.WithoutCancel detaches from the HTTP lifecycle but keeps trace
	// values. We add our own timeout.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 10*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()

		stats, err := s.Store.ImportOutputFile(jobCtx, sourceFile)
		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			log.Printf("[import-job %s] failed: %v", jobID, err)
			return
		}
		job.Status = "completed"
		job.Result = stats
		log.Printf("[import-job %s] completed: imported=%d skipped=%d", jobID, stats.Imported, stats.Skipped)
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Import job started",
		"job_id":  jobID,
		"source":  sourceFile,
		"poll":    fmt.Sprintf("/api/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
